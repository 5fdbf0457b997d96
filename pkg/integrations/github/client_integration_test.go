//go:build integration

package github

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
)

func TestFetch_Integration(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set, skipping integration test")
	}

	client := NewClient(cache.NewNullCache(), token, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		owner   string
		repo    string
		wantErr bool
	}{
		{"golang/go", "golang", "go", false},
		{"nonexistent", "nonexistent-owner-12345", "nonexistent-repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, err := client.Fetch(ctx, tt.owner, tt.repo, false)
			if (err != nil) != tt.wantErr {
				t.Errorf("Fetch(%q, %q) error = %v, wantErr %v", tt.owner, tt.repo, err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if metrics.License != "BSD-3-Clause" {
					t.Errorf("License = %q, want BSD-3-Clause", metrics.License)
				}
				if metrics.Description == "" {
					t.Error("Description should not be empty")
				}
			}
		})
	}
}
