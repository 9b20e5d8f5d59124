package sftpclient

import (
	"context"
	"strings"
	"testing"
)

// The real SFTP paths need a server; unit tests cover the validation layer.

func TestFetchFileValidation(t *testing.T) {
	_, err := FetchFile(context.Background(), Config{}, "feed.xlsx", t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing env") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDialRefusesWithoutHostKeyOptIn(t *testing.T) {
	cfg := Config{Host: "h", User: "u", Pass: "p"}
	_, _, err := dial(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error without host key opt-in")
	}
	if !strings.Contains(err.Error(), "host key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListFeedsValidation(t *testing.T) {
	_, err := ListFeeds(context.Background(), Config{Host: "h"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing env") {
		t.Fatalf("unexpected error: %v", err)
	}
}
