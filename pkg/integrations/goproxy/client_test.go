package goproxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

func TestEscapePath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"github.com/gin-gonic/gin", "github.com/gin-gonic/gin"},
		{"github.com/Azure/azure-sdk-for-go", "github.com/!azure/azure-sdk-for-go"},
		{"golang.org/x/sync", "golang.org/x/sync"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapePath(tt.input); got != tt.want {
				t.Errorf("escapePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepositoryURL(t *testing.T) {
	tests := []struct {
		mod  string
		want string
	}{
		{"github.com/spf13/cobra", "https://github.com/spf13/cobra"},
		{"github.com/redis/go-redis/v9", "https://github.com/redis/go-redis"},
		{"gitlab.com/group/project", "https://gitlab.com/group/project"},
		{"golang.org/x/sync", ""},
		{"github.com/onlyowner", ""},
	}
	for _, tt := range tests {
		t.Run(tt.mod, func(t *testing.T) {
			if got := RepositoryURL(tt.mod); got != tt.want {
				t.Errorf("RepositoryURL(%q) = %q, want %q", tt.mod, got, tt.want)
			}
		})
	}
}

func TestClient_FetchRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/github.com/example/mylib/@latest":
			json.NewEncoder(w).Encode(infoResponse{Version: "v1.2.3"})
		case "/github.com/!example/mylib/@v/v1.0.0.info":
			json.NewEncoder(w).Encode(infoResponse{Version: "v1.0.0"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)

	rel, err := c.FetchRelease(context.Background(), "github.com/example/mylib", "", true)
	if err != nil {
		t.Fatalf("FetchRelease failed: %v", err)
	}
	if rel.Version != "v1.2.3" {
		t.Errorf("version = %q, want v1.2.3", rel.Version)
	}
	if rel.DownloadURL != server.URL+"/github.com/example/mylib/@v/v1.2.3.zip" {
		t.Errorf("download = %q", rel.DownloadURL)
	}
	if rel.Repository != "https://github.com/example/mylib" {
		t.Errorf("repository = %q", rel.Repository)
	}

	rel, err = c.FetchRelease(context.Background(), "github.com/Example/mylib", "v1.0.0", true)
	if err != nil {
		t.Fatalf("FetchRelease pinned failed: %v", err)
	}
	if rel.Version != "v1.0.0" {
		t.Errorf("version = %q, want v1.0.0", rel.Version)
	}
}

func TestClient_FetchRelease_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testClient(server.URL).FetchRelease(context.Background(), "github.com/missing/module", "", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testClient(serverURL string) *Client {
	return &Client{
		Client:  integrations.NewClient(cache.NewNullCache(), "goproxy:", time.Hour, nil),
		baseURL: serverURL,
	}
}
