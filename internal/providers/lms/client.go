// Package lms probes the learning-management system for file existence.
package lms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"material-recon/internal/httpx"
)

type Client struct {
	Token string
	HTTP  *http.Client
	Retry httpx.RetryConfig
}

func New(token string) *Client {
	tr := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		Token: token,
		HTTP:  &http.Client{Timeout: 30 * time.Second, Transport: tr},
		Retry: httpx.DefaultRetryConfig(),
	}
}

// Existence is the outcome of one file probe. GroupID is the parent
// grouping the LMS reports for the resource, when it does.
type Existence struct {
	Exists  bool
	GroupID string
}

// CheckFile probes a resource URL. A 401, 403 or 404 is a definitive
// "not exists" — the resource is gone or walled off, either way the
// record's file link is dead — not a fault to retry.
func (c *Client) CheckFile(ctx context.Context, resourceURL string) (Existence, error) {
	resp, _, err := httpx.DoWithRetry(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodHead, resourceURL, nil)
			if err != nil {
				return nil, err
			}
			if c.Token != "" {
				r.Header.Set("Authorization", "Bearer "+c.Token)
			}
			return r, nil
		},
		c.Retry,
	)
	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			switch herr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return Existence{Exists: false}, nil
			}
		}
		return Existence{}, fmt.Errorf("lms: check %s: %w", resourceURL, err)
	}
	return Existence{
		Exists:  true,
		GroupID: resp.Header.Get("X-File-Group"),
	}, nil
}
