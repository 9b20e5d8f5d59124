package directory

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"material-recon/internal/httpx"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func clientWith(t *testing.T, status int, body string, check func(*http.Request)) *Client {
	t.Helper()
	return &Client{
		BaseURL: "https://directory.test/api",
		APIKey:  "k2",
		HTTP: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if check != nil {
				check(req)
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
				Header:     http.Header{},
			}, nil
		})},
		Retry: httpx.RetryConfig{MaxAttempts: 1},
	}
}

func TestSearchPerson(t *testing.T) {
	c := clientWith(t, 200, `{"results":[{"displayName":"A. de Vries","email":"a@example.edu","affiliation":"Bètawetenschappen (FNWI)"}]}`,
		func(req *http.Request) {
			if req.URL.Query().Get("name") != "A. de Vries" {
				t.Errorf("query = %s", req.URL.RawQuery)
			}
			if req.Header.Get("Authorization") != "Bearer k2" {
				t.Errorf("auth header = %q", req.Header.Get("Authorization"))
			}
		})

	p, err := c.SearchPerson(context.Background(), "A. de Vries")
	if err != nil {
		t.Fatal(err)
	}
	if p.Email != "a@example.edu" || p.Affiliation != "Bètawetenschappen (FNWI)" {
		t.Fatalf("person = %+v", p)
	}
}

func TestSearchPersonNoMatch(t *testing.T) {
	c := clientWith(t, 200, `{"results":[]}`, nil)
	p, err := c.SearchPerson(context.Background(), "Niemand")
	if err != nil || p != nil {
		t.Fatalf("person=%+v err=%v", p, err)
	}
}
