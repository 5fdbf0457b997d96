package store

import (
	"context"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

// Supported drivers for Open.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config selects and addresses a backend.
type Config struct {
	Driver   string
	URL      string // redis/mongo URL or SQLite file path
	Database string // mongo only
}

// Open returns the backend named by cfg.Driver. An empty driver selects memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		return OpenRedis(ctx, cfg.URL)
	case DriverMongo:
		db := cfg.Database
		if db == "" {
			db = "bombase"
		}
		return OpenMongo(ctx, cfg.URL, db)
	case DriverSQLite:
		if cfg.URL == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "sqlite store needs a file path")
		}
		return OpenSQLite(cfg.URL)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown store driver %q", cfg.Driver)
	}
}
