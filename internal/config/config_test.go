package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
listen = ":9090"

[store]
driver = "sqlite"
url = "/tmp/bombase.db"

[cache]
driver = "none"
ttl = "1h30m"

[harvest]
sources = ["npm", "golang"]

[scanner]
enabled = true
timeout = "2m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	if cfg.Store.Driver != "sqlite" || cfg.StoreConfig().URL != "/tmp/bombase.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if len(cfg.Harvest.Sources) != 2 {
		t.Errorf("sources = %v", cfg.Harvest.Sources)
	}
	if !cfg.Scanner.Enabled || cfg.Scanner.Timeout != 2*time.Minute || cfg.Scanner.Command != "scancode" {
		t.Errorf("scanner = %+v", cfg.Scanner)
	}
	if cfg.Runner.Workers != Default().Runner.Workers {
		t.Errorf("unset runner.workers = %d, want default", cfg.Runner.Workers)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[server\n"},
		{"unknown key", "[server]\nport = 8080\n"},
		{"unknown store", "[store]\ndriver = \"postgres\"\n"},
		{"store without url", "[store]\ndriver = \"redis\"\n"},
		{"unknown cache", "[cache]\ndriver = \"memcached\"\n"},
		{"unknown source", "[harvest]\nsources = [\"cpan\"]\n"},
		{"negative workers", "[runner]\nworkers = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit file")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != Default().Server.Listen {
		t.Errorf("listen = %q, want default", cfg.Server.Listen)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", "bombase", "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}
