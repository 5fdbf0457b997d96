package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Cascade hooks
	p := NoopCascadeHooks{}
	p.OnPackageCreated(ctx, "npm")
	p.OnEdit(ctx, "npm", 2, nil)
	p.OnNotify(ctx, "license-scan", true)
	p.OnTaskStart(ctx, "license-scan")
	p.OnTaskComplete(ctx, "license-scan", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "http")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "http", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "pypi.org", "/pypi/requests/2.31.0/json")
	h.OnResponse(ctx, "GET", "pypi.org", "/pypi/requests/2.31.0/json", 200, time.Second)
	h.OnError(ctx, "GET", "pypi.org", "/pypi/requests/2.31.0/json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Cascade().(NoopCascadeHooks); !ok {
		t.Error("Cascade() should return NoopCascadeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customCascade := &testCascadeHooks{}
	SetCascadeHooks(customCascade)
	if Cascade() != customCascade {
		t.Error("SetCascadeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Cascade().(NoopCascadeHooks); !ok {
		t.Error("Reset() should restore NoopCascadeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testCascadeHooks{}
	SetCascadeHooks(custom)

	// Setting nil should be ignored
	SetCascadeHooks(nil)

	if Cascade() != custom {
		t.Error("SetCascadeHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testCascadeHooks struct{ NoopCascadeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
