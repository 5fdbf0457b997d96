package rubygems

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

func TestClient_FetchRelease(t *testing.T) {
	tests := []struct {
		name    string
		version string
		path    string
	}{
		{"pinned version", "7.1.0", "/v2/rubygems/rails/versions/7.1.0.json"},
		{"current version", "", "/v1/gems/rails.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.path {
					http.NotFound(w, r)
					return
				}
				json.NewEncoder(w).Encode(gemResponse{
					Name:          "rails",
					Version:       "7.1.0",
					Info:          "Ruby on Rails is a full-stack web framework",
					Licenses:      []string{"MIT"},
					SourceCodeURI: "https://github.com/rails/rails/tree/v7.1.0",
					HomepageURI:   "https://rubyonrails.org",
					GemURI:        "https://rubygems.org/gems/rails-7.1.0.gem",
					SHA:           "ABC123",
					Authors:       "David Heinemeier Hansson, Rails Core",
				})
			}))
			defer server.Close()

			rel, err := testClient(server.URL).FetchRelease(context.Background(), "Rails", tt.version, true)
			if err != nil {
				t.Fatalf("FetchRelease failed: %v", err)
			}
			if rel.DownloadURL != "https://rubygems.org/gems/rails-7.1.0.gem" {
				t.Errorf("download = %q", rel.DownloadURL)
			}
			if rel.SHA256 != "abc123" {
				t.Errorf("sha256 = %q", rel.SHA256)
			}
			if len(rel.Authors) != 2 || rel.Authors[1] != "Rails Core" {
				t.Errorf("authors = %v", rel.Authors)
			}
			if rel.License != "MIT" {
				t.Errorf("license = %q", rel.License)
			}
		})
	}
}

func TestClient_FetchRelease_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testClient(server.URL).FetchRelease(context.Background(), "nope", "1.0.0", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestJoinLicenses(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"MIT"}, "MIT"},
		{[]string{"MIT", " Ruby "}, "MIT OR Ruby"},
		{[]string{"", "BSD-2-Clause"}, "BSD-2-Clause"},
	}
	for _, tt := range tests {
		if got := joinLicenses(tt.in); got != tt.want {
			t.Errorf("joinLicenses(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func testClient(serverURL string) *Client {
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = serverURL
	return c
}
