// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about cascade rounds, cache operations, and registry calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCascadeHooks(prom.New(reg))
//	    observability.SetCacheHooks(prom.New(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Cascade().OnTaskStart(ctx, listener)
//	// ... run the task ...
//	observability.Cascade().OnTaskComplete(ctx, listener, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Cascade Hooks
// =============================================================================

// CascadeHooks receives events from the registry and its task runner.
type CascadeHooks interface {
	// OnPackageCreated records the first edit of an unknown coordinate.
	OnPackageCreated(ctx context.Context, purlType string)

	// OnEdit records a completed edit and the number of fields it changed.
	OnEdit(ctx context.Context, purlType string, changed int, err error)

	// OnNotify records a listener decision; scheduled reports whether it
	// returned a follow-up task.
	OnNotify(ctx context.Context, listener string, scheduled bool)

	// Task events
	OnTaskStart(ctx context.Context, listener string)
	OnTaskComplete(ctx context.Context, listener string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCascadeHooks is a no-op implementation of CascadeHooks.
type NoopCascadeHooks struct{}

func (NoopCascadeHooks) OnPackageCreated(context.Context, string)                     {}
func (NoopCascadeHooks) OnEdit(context.Context, string, int, error)                   {}
func (NoopCascadeHooks) OnNotify(context.Context, string, bool)                       {}
func (NoopCascadeHooks) OnTaskStart(context.Context, string)                          {}
func (NoopCascadeHooks) OnTaskComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	cascadeHooks  CascadeHooks  = NoopCascadeHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetCascadeHooks registers custom cascade hooks.
// This should be called once at application startup before the registry is used.
func SetCascadeHooks(h CascadeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cascadeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Cascade returns the registered cascade hooks.
func Cascade() CascadeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cascadeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	cascadeHooks = NoopCascadeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
