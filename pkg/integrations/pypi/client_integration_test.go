//go:build integration

package pypi

import (
	"context"
	"testing"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
)

func TestFetchRelease_Integration(t *testing.T) {
	client := NewClient(cache.NewNullCache(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		pkg     string
		version string
		wantErr bool
	}{
		{"requests", "requests", "2.31.0", false},
		{"flask latest", "flask", "", false},
		{"nonexistent", "this-package-should-not-exist-12345", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, err := client.FetchRelease(ctx, tt.pkg, tt.version, false)
			if (err != nil) != tt.wantErr {
				t.Errorf("FetchRelease(%q) error = %v, wantErr %v", tt.pkg, err, tt.wantErr)
				return
			}
			if !tt.wantErr && rel.SHA256 == "" {
				t.Error("expected a sha256 digest")
			}
		})
	}
}
