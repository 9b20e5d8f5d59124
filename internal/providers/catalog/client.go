// Package catalog talks to the external course-catalog search service.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
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

// Course is the catalog payload for one course code: names, the catalog's
// internal id, program text and free-text staff name lists keyed by role.
type Course struct {
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	ShortName string              `json:"shortName"`
	CatalogID string              `json:"id"`
	Program   string              `json:"program"`
	Staff     map[string][]string `json:"staff"`
}

type searchResponse struct {
	Items []Course `json:"items"`
}

// SearchCourse looks a course code up in the catalog. An empty result is
// not an error: it returns (nil, nil) and the caller records a tombstone.
func (c *Client) SearchCourse(ctx context.Context, code string) (*Course, error) {
	var out searchResponse
	err := httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			u := fmt.Sprintf("%s/courses/search?code=%s", c.BaseURL, url.QueryEscape(code))
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
		return nil, fmt.Errorf("catalog: search %q: %w", code, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	return &out.Items[0], nil
}
