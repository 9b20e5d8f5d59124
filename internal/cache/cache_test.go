package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFingerprintStableAndUnambiguous(t *testing.T) {
	if Fingerprint("a", "b") != Fingerprint("a", "b") {
		t.Error("fingerprint not stable")
	}
	if Fingerprint("a", "b") == Fingerprint("ab") {
		t.Error("argument boundary lost")
	}
	if Fingerprint("a", "b") == Fingerprint("b", "a") {
		t.Error("argument order lost")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	c := New()
	c.Register("op", time.Minute)

	if _, ok := c.Get("op", "k"); ok {
		t.Error("hit on empty cache")
	}
	c.Set("op", []byte("v"), "k")
	raw, ok := c.Get("op", "k")
	if !ok || string(raw) != "v" {
		t.Errorf("got %q, %v", raw, ok)
	}
}

func TestUnregisteredOperationIsAdvisory(t *testing.T) {
	c := New()
	c.Set("nope", []byte("v"), "k")
	if _, ok := c.Get("nope", "k"); ok {
		t.Error("unregistered op stored a value")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New()
	c.Register("op", 20*time.Millisecond)
	c.Set("op", []byte("v"), "k")

	if _, ok := c.Get("op", "k"); !ok {
		t.Fatal("miss before TTL")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("op", "k"); ok {
		t.Error("hit after TTL")
	}
}

func TestDoHitShortCircuitsFetch(t *testing.T) {
	c := New()
	c.Register("op", time.Minute)

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "fresh", nil
	}

	v, err := Do(context.Background(), c, "op", fetch, "k")
	if err != nil || v != "fresh" || calls != 1 {
		t.Fatalf("first: v=%q err=%v calls=%d", v, err, calls)
	}
	v, err = Do(context.Background(), c, "op", fetch, "k")
	if err != nil || v != "fresh" {
		t.Fatalf("second: v=%q err=%v", v, err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestDoErrorNotCached(t *testing.T) {
	c := New()
	c.Register("op", time.Minute)

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("upstream down")
		}
		return "ok", nil
	}

	if _, err := Do(context.Background(), c, "op", fetch, "k"); err == nil {
		t.Fatal("expected error")
	}
	v, err := Do(context.Background(), c, "op", fetch, "k")
	if err != nil || v != "ok" || calls != 2 {
		t.Fatalf("retry: v=%q err=%v calls=%d", v, err, calls)
	}
}

func TestDoNilCachePassesThrough(t *testing.T) {
	v, err := Do(context.Background(), nil, "op", func(ctx context.Context) (int, error) {
		return 7, nil
	}, "k")
	if err != nil || v != 7 {
		t.Fatalf("v=%d err=%v", v, err)
	}
}
