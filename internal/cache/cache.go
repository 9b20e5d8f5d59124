// Package cache is the cache-aside layer in front of external fetches.
// Entries are keyed by operation name plus a stable argument fingerprint;
// TTLs are chosen per operation by data volatility. The cache is advisory:
// eviction or absence costs a round-trip, never correctness.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Default TTLs per operation kind.
const (
	TTLCourse     = 24 * time.Hour     // catalog data is stable
	TTLPerson     = 7 * 24 * time.Hour // directory data barely moves
	TTLFileExists = 24 * time.Hour     // LMS file presence
)

const defaultSize = 4096

// Cache holds one TTL-scoped LRU per registered operation.
type Cache struct {
	mu  sync.Mutex
	ops map[string]*expirable.LRU[string, []byte]
}

func New() *Cache {
	return &Cache{ops: map[string]*expirable.LRU[string, []byte]{}}
}

// Register creates the store for an operation with its TTL. Registering the
// same operation twice keeps the first store.
func (c *Cache) Register(op string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ops[op]; !ok {
		c.ops[op] = expirable.NewLRU[string, []byte](defaultSize, nil, ttl)
	}
}

func (c *Cache) store(op string) *expirable.LRU[string, []byte] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ops[op]
}

// Fingerprint derives a stable key from the call arguments.
func Fingerprint(args ...string) string {
	h := sha256.New()
	for _, a := range args {
		fmt.Fprintf(h, "%d:%s;", len(a), a)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the raw cached value for op+fingerprint(args).
func (c *Cache) Get(op string, args ...string) ([]byte, bool) {
	s := c.store(op)
	if s == nil {
		return nil, false
	}
	return s.Get(Fingerprint(args...))
}

// Set stores a raw value under op+fingerprint(args). Unregistered
// operations are dropped silently; the cache is advisory.
func (c *Cache) Set(op string, value []byte, args ...string) {
	if s := c.store(op); s != nil {
		s.Add(Fingerprint(args...), value)
	}
}

// Do is the cache-aside wrapper: a hit short-circuits fetch entirely,
// a miss runs fetch and stores the JSON-encoded result on success.
func Do[T any](ctx context.Context, c *Cache, op string, fetch func(context.Context) (T, error), args ...string) (T, error) {
	var out T
	if c != nil {
		if raw, ok := c.Get(op, args...); ok {
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
			// Undecodable entry: fall through to a real fetch.
		}
	}

	out, err := fetch(ctx)
	if err != nil {
		return out, err
	}
	if c != nil {
		if raw, err := json.Marshal(out); err == nil {
			c.Set(op, raw, args...)
		}
	}
	return out, nil
}
