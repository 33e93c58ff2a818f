package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultTTL      = 24 * time.Hour
	cleanupInterval = 10 * time.Minute
)

// Queries holds persisted query documents keyed by their sha256 hash.
type Queries struct {
	c *gocache.Cache
}

// NewQueries creates a query cache whose entries expire ttl after their last
// registration. A non-positive ttl uses the default of 24h.
func NewQueries(ttl time.Duration) *Queries {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Queries{c: gocache.New(ttl, cleanupInterval)}
}

// Add registers a query under its hash, replacing any existing item.
func (q *Queries) Add(hash, query string) {
	if query == "" {
		return
	}
	q.c.Set(hash, query, gocache.DefaultExpiration)
}

// Get retrieves a query by hash.
func (q *Queries) Get(hash string) (string, bool) {
	val, found := q.c.Get(hash)
	if !found {
		return "", false
	}

	query, ok := val.(string)
	if !ok {
		// Item found but is not the expected type, treat as not found
		return "", false
	}
	return query, true
}

// Len returns the number of cached queries, expired ones included until the
// next cleanup.
func (q *Queries) Len() int {
	return q.c.ItemCount()
}

// Hash returns the hex encoded sha256 of query, the key clients use for
// automatic persisted queries.
func Hash(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}
