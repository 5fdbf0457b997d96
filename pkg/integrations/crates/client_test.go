package crates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

func TestNewClient(t *testing.T) {
	c := NewClient(cache.NewNullCache(), time.Hour)
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
}

func TestClient_FetchRelease(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/crates/serde":
			w.Write([]byte(`{"crate":{"name":"serde","max_version":"1.0.193","description":"A serialization framework","repository":"https://github.com/serde-rs/serde","homepage":"https://serde.rs"}}`))
		case "/crates/serde/1.0.193":
			w.Write([]byte(`{"version":{"num":"1.0.193","license":"MIT OR Apache-2.0","checksum":"25DD9975E68D0CB5AA1120C288333FC98731BD1DD12F561E468EA4728C042B89","published_by":{"login":"dtolnay","name":"David Tolnay"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)

	rel, err := c.FetchRelease(context.Background(), "serde", "", true)
	if err != nil {
		t.Fatalf("FetchRelease failed: %v", err)
	}

	if rel.Version != "1.0.193" {
		t.Errorf("version = %q, want max_version", rel.Version)
	}
	if rel.License != "MIT OR Apache-2.0" {
		t.Errorf("license = %q", rel.License)
	}
	if rel.SHA256 != "25dd9975e68d0cb5aa1120c288333fc98731bd1dd12f561e468ea4728c042b89" {
		t.Errorf("sha256 = %q", rel.SHA256)
	}
	if rel.DownloadURL != server.URL+"/crates/serde/1.0.193/download" {
		t.Errorf("download = %q", rel.DownloadURL)
	}
	if rel.Publisher != "dtolnay" || len(rel.Authors) != 1 {
		t.Errorf("publisher = %q, authors = %v", rel.Publisher, rel.Authors)
	}
	if userAgent == "" {
		t.Error("crates.io requires a User-Agent")
	}
}

func TestClient_FetchRelease_UnknownVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crates/serde" {
			w.Write([]byte(`{"crate":{"name":"serde","max_version":"1.0.193"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchRelease(context.Background(), "serde", "0.0.1", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testClient(serverURL string) *Client {
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = serverURL
	return c
}
