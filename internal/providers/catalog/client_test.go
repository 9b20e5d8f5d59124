package catalog

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
		BaseURL: "https://catalog.test/api",
		APIKey:  "k1",
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

func TestSearchCourse(t *testing.T) {
	c := clientWith(t, 200, `{"items":[{"code":"50621","name":"Logica","shortName":"LOG","id":"cat-9","program":"BSc KI","staff":{"teacher":["A. de Vries"]}}]}`,
		func(req *http.Request) {
			if req.URL.Path != "/api/courses/search" || req.URL.Query().Get("code") != "50621" {
				t.Errorf("url = %s", req.URL)
			}
			if req.Header.Get("Authorization") != "Bearer k1" {
				t.Errorf("auth header = %q", req.Header.Get("Authorization"))
			}
		})

	course, err := c.SearchCourse(context.Background(), "50621")
	if err != nil {
		t.Fatal(err)
	}
	if course.Name != "Logica" || course.CatalogID != "cat-9" {
		t.Fatalf("course = %+v", course)
	}
	if len(course.Staff["teacher"]) != 1 {
		t.Fatalf("staff = %v", course.Staff)
	}
}

func TestSearchCourseNoMatch(t *testing.T) {
	c := clientWith(t, 200, `{"items":[]}`, nil)
	course, err := c.SearchCourse(context.Background(), "99999")
	if err != nil || course != nil {
		t.Fatalf("course=%+v err=%v", course, err)
	}
}

func TestSearchCourseServerError(t *testing.T) {
	c := clientWith(t, 500, `boom`, nil)
	if _, err := c.SearchCourse(context.Background(), "50621"); err == nil {
		t.Fatal("expected error")
	}
}
