package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
)

func TestClient_Fetch(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/repos/owner/repo":
			auth = r.Header.Get("Authorization")
			resp := repoResponse{
				Description: "A repo",
				HomePage:    "https://repo.example",
				Archived:    true,
			}
			resp.License.SPDXID = "MIT"
			json.NewEncoder(w).Encode(resp)
		case "/repos/owner/repo/contributors":
			json.NewEncoder(w).Encode([]contributorResponse{
				{Login: "user1", Contributions: 10, Type: "User"},
				{Login: "dependabot", Contributions: 99, Type: "Bot"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(server.URL, "secret")

	metrics, err := c.Fetch(context.Background(), "owner", "repo", true)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if metrics.License != "MIT" || metrics.Description != "A repo" || metrics.HomePage != "https://repo.example" {
		t.Errorf("unexpected metrics %+v", metrics)
	}
	if !metrics.Archived {
		t.Error("expected archived repository")
	}
	if metrics.RepoURL != "https://github.com/owner/repo" {
		t.Errorf("repo url = %q", metrics.RepoURL)
	}
	if len(metrics.Contributors) != 1 {
		t.Errorf("bots should be skipped, got %v", metrics.Contributors)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestClient_FetchRejectsInvalidRef(t *testing.T) {
	c := testClient("http://127.0.0.1:0", "")
	if _, err := c.Fetch(context.Background(), "-bad", "repo", true); err == nil {
		t.Error("expected validation error")
	}
}

func TestSPDXID(t *testing.T) {
	if got := spdxID("NOASSERTION"); got != "" {
		t.Errorf("spdxID(NOASSERTION) = %q", got)
	}
	if got := spdxID("Apache-2.0"); got != "Apache-2.0" {
		t.Errorf("spdxID(Apache-2.0) = %q", got)
	}
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantRepo  string
		wantOK    bool
	}{
		{"https://github.com/expressjs/express", "expressjs", "express", true},
		{"git+https://github.com/expressjs/express.git", "expressjs", "express", true},
		{"git@github.com:spf13/cobra.git", "spf13", "cobra", true},
		{"git+ssh://git@github.com/a/b.git", "a", "b", true},
		{"https://github.com/pallets/flask/tree/main", "pallets", "flask", true},
		{"https://gitlab.com/a/b", "", "", false},
		{"https://github.com/onlyowner", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, ok := ParseRepoURL(tt.in)
			if ok != tt.wantOK || owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseRepoURL(%q) = %q, %q, %v", tt.in, owner, repo, ok)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(cache.NewNullCache(), "test-token", time.Hour)
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
}

func testClient(serverURL, token string) *Client {
	c := NewClient(cache.NewNullCache(), token, time.Hour)
	c.baseURL = serverURL
	return c
}
