// Package directory talks to the external staff-directory search service.
package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"material-recon/internal/httpx"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
}

func New(baseURL, apiKey string) *Client {
	tr := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 60 * time.Second, Transport: tr},
		Retry:   httpx.DefaultRetryConfig(),
	}
}

// Person is the best directory match for a name query. Affiliation carries
// the organization in "Name (ABBR)" form.
type Person struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
}

type searchResponse struct {
	Results []Person `json:"results"`
}

// SearchPerson returns the best match for a display name, (nil, nil) when
// the directory has none.
func (c *Client) SearchPerson(ctx context.Context, name string) (*Person, error) {
	var out searchResponse
	err := httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			u := fmt.Sprintf("%s/persons/search?name=%s", c.BaseURL, url.QueryEscape(name))
			r, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, err
			}
			r.Header.Set("Accept", "application/json")
			if c.APIKey != "" {
				r.Header.Set("Authorization", "Bearer "+c.APIKey)
			}
			return r, nil
		},
		&out,
		c.Retry,
	)
	if err != nil {
		return nil, fmt.Errorf("directory: search %q: %w", name, err)
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	return &out.Results[0], nil
}

var affiliationAbbr = regexp.MustCompile(`\(([A-Za-z]{2,8})\)\s*$`)

// FacultyAbbr extracts the faculty abbreviation from an affiliation string
// like "Faculteit der Geesteswetenschappen (FGW)", checked against the
// configured known set. Empty when the affiliation matches no known
// faculty.
func FacultyAbbr(affiliation string, known map[string]bool) string {
	m := affiliationAbbr.FindStringSubmatch(strings.TrimSpace(affiliation))
	if m == nil {
		return ""
	}
	abbr := strings.ToUpper(m[1])
	if !known[abbr] {
		return ""
	}
	return abbr
}
