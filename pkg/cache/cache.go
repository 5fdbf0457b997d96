// Package cache stores raw registry responses so repeated enrichment of the
// same coordinate does not hit the network again.
//
// The [Cache] interface works on bytes with a per-entry TTL. Three backends
// are provided:
//
//   - [FileCache]: one file per entry below a directory, for the CLI
//   - [RedisCache]: shared entries for several server instances
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so that different registries never collide.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the entry for key; ok is false on a miss or expired entry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) (removed int, err error)
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key of a registry response. namespace identifies
	// the registry ("npm:") and key the request within it.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces "http:<namespace>:<key>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
