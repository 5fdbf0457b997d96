package pypi

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
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flask/2.0.0/json" {
			http.NotFound(w, r)
			return
		}
		resp := apiResponse{
			Info: apiInfo{
				Name:    "Flask",
				Version: "2.0.0",
				Summary: "A micro web framework",
				License: "BSD-3-Clause",
				ProjectURLs: map[string]any{
					"Source": "https://github.com/pallets/flask/",
				},
				Author: "Armin Ronacher",
			},
			URLs: []releaseFile{
				{PackageType: "bdist_wheel", URL: "https://files.example/flask-2.0.0-py3-none-any.whl"},
				{PackageType: "sdist", URL: "https://files.example/Flask-2.0.0.tar.gz"},
			},
		}
		resp.URLs[1].Digests.SHA256 = "ABCDEF"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := testClient(server.URL)

	rel, err := c.FetchRelease(context.Background(), "Flask", "2.0.0", true)
	if err != nil {
		t.Fatalf("FetchRelease failed: %v", err)
	}

	if rel.Name != "Flask" || rel.Version != "2.0.0" {
		t.Errorf("identity = %s %s", rel.Name, rel.Version)
	}
	if rel.DownloadURL != "https://files.example/Flask-2.0.0.tar.gz" {
		t.Errorf("download = %q, want the sdist", rel.DownloadURL)
	}
	if rel.SHA256 != "abcdef" {
		t.Errorf("sha256 = %q", rel.SHA256)
	}
	if rel.Repository != "https://github.com/pallets/flask" {
		t.Errorf("repository = %q", rel.Repository)
	}
	if rel.License != "BSD-3-Clause" {
		t.Errorf("license = %q", rel.License)
	}
	if len(rel.Authors) != 1 || rel.Authors[0] != "Armin Ronacher" {
		t.Errorf("authors = %v", rel.Authors)
	}
}

func TestClient_FetchRelease_Latest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/requests/json" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(apiResponse{Info: apiInfo{Name: "requests", Version: "2.31.0"}})
	}))
	defer server.Close()

	rel, err := testClient(server.URL).FetchRelease(context.Background(), "requests", "", true)
	if err != nil {
		t.Fatalf("FetchRelease failed: %v", err)
	}
	if rel.Version != "2.31.0" {
		t.Errorf("version = %q", rel.Version)
	}
	if rel.DownloadURL != "" {
		t.Errorf("download = %q, want empty without files", rel.DownloadURL)
	}
}

func TestClient_FetchRelease_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.FetchRelease(context.Background(), "missing-pkg", "1.0", true)
	if err == nil {
		t.Fatal("expected error for missing package")
	}
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractLicenseType(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		license     string
		classifiers []string
		want        string
	}{
		{"expression wins", "MIT OR Apache-2.0", "whatever", nil, "MIT OR Apache-2.0"},
		{"classifier", "", "", []string{"License :: OSI Approved :: MIT License"}, "MIT License"},
		{"short field", "", "BSD", nil, "BSD"},
		{"first line of text", "", "Apache License 2.0\n\nlong text follows", nil, "Apache License 2.0"},
		{"empty", "", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractLicenseType(tt.expression, tt.license, tt.classifiers); got != tt.want {
				t.Errorf("extractLicenseType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePkgName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Django", "django"},
		{"Flask_App", "flask-app"},
		{"some_package-name", "some-package-name"},
		{"UPPERCASE", "uppercase"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := integrations.NormalizePkgName(tt.input)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func testClient(serverURL string) *Client {
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = serverURL
	return c
}
