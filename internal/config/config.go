// Package config loads the bombase configuration file.
//
// The file is TOML and every key is optional:
//
//	[server]
//	listen = ":8080"
//	cors_origins = ["*"]
//
//	[runner]
//	workers = 4
//	core_workers = 2
//
//	[store]
//	driver = "sqlite"          # memory, redis, mongo or sqlite
//	url = "/var/lib/bombase/packages.db"
//
//	[cache]
//	driver = "file"            # file, redis or none
//	ttl = "24h"
//
//	[harvest]
//	sources = ["npm", "pypi"]
//	github_token = ""
//	rate_per_second = 5
//
//	[scanner]
//	enabled = true
//	command = "scancode"
//	timeout = "10m"
//
//	[curation]
//	file = "curations.yaml"
//	watch = true
//
//	[metrics]
//	enabled = true
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/harvest"
	"github.com/philips-software/bom-base-sub000/pkg/registry"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

const appName = "bombase"

// Config is the complete configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Runner   Runner   `toml:"runner"`
	Store    Store    `toml:"store"`
	Cache    Cache    `toml:"cache"`
	Harvest  Harvest  `toml:"harvest"`
	Scanner  Scanner  `toml:"scanner"`
	Curation Curation `toml:"curation"`
	Metrics  Metrics  `toml:"metrics"`
}

type Server struct {
	Listen      string   `toml:"listen"`
	CORSOrigins []string `toml:"cors_origins"`
}

type Runner struct {
	Workers     int `toml:"workers"`
	CoreWorkers int `toml:"core_workers"`
}

type Store struct {
	Driver   string `toml:"driver"`
	URL      string `toml:"url"`
	Database string `toml:"database"`
}

type Cache struct {
	Driver string        `toml:"driver"`
	Dir    string        `toml:"dir"`
	URL    string        `toml:"url"`
	TTL    time.Duration `toml:"ttl"`
}

type Harvest struct {
	Sources       []string `toml:"sources"`
	GitHubToken   string   `toml:"github_token"`
	RatePerSecond float64  `toml:"rate_per_second"`
}

type Scanner struct {
	Enabled bool          `toml:"enabled"`
	Command string        `toml:"command"`
	Workdir string        `toml:"workdir"`
	Timeout time.Duration `toml:"timeout"`
}

type Curation struct {
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

type Metrics struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: Server{Listen: ":8080", CORSOrigins: []string{"*"}},
		Runner: Runner{Workers: registry.DefaultWorkers, CoreWorkers: registry.DefaultCoreWorkers},
		Store:  Store{Driver: store.DriverMemory, Database: appName},
		Cache:  Cache{Driver: cache.DriverFile, TTL: 24 * time.Hour},
		Harvest: Harvest{
			Sources:       slices.Clone(harvest.RegistrySources),
			RatePerSecond: 5,
		},
		Scanner:  Scanner{Command: "scancode", Timeout: 10 * time.Minute},
		Curation: Curation{Watch: true},
		Metrics:  Metrics{Enabled: true},
	}
}

// DefaultPath returns the configuration file location using the XDG
// convention (~/.config/bombase/config.toml).
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. With an empty path the
// default location is tried and a missing file yields the defaults; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
	case !explicit && os.IsNotExist(err):
		return cfg, nil
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names, sources and sizes.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverMemory, store.DriverRedis, store.DriverMongo, store.DriverSQLite:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "store.driver: unknown driver %q", c.Store.Driver)
	}
	if c.Store.Driver != store.DriverMemory && c.Store.URL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.url is required for the %s driver", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case cache.DriverFile, cache.DriverRedis, cache.DriverNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.driver: unknown driver %q", c.Cache.Driver)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	for _, s := range c.Harvest.Sources {
		if !slices.Contains(harvest.RegistrySources, s) {
			return errors.New(errors.ErrCodeInvalidInput, "harvest.sources: unknown source %q", s)
		}
	}
	if c.Runner.Workers < 0 || c.Runner.CoreWorkers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "runner sizes must not be negative")
	}
	return nil
}

// StoreConfig converts the [store] section.
func (c *Config) StoreConfig() store.Config {
	return store.Config{Driver: c.Store.Driver, URL: c.Store.URL, Database: c.Store.Database}
}

// CacheConfig converts the [cache] section.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{Driver: c.Cache.Driver, Dir: c.Cache.Dir, URL: c.Cache.URL}
}

// RunnerOptions converts the [runner] section.
func (c *Config) RunnerOptions() registry.RunnerOptions {
	return registry.RunnerOptions{Workers: c.Runner.Workers, CoreWorkers: c.Runner.CoreWorkers}
}
