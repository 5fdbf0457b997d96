package cache

import (
	"context"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

// Cache drivers accepted by Open.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
	DriverNone  = "none"
)

// Config selects and locates a cache backend.
type Config struct {
	Driver string // file (default), redis or none
	Dir    string // file: directory, DefaultDir() when empty
	URL    string // redis: redis://host:port/db
}

// Open creates the cache described by cfg.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Driver {
	case "", DriverFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "locate cache directory")
			}
			dir = d
		}
		return NewFileCache(dir)
	case DriverRedis:
		if cfg.URL == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "redis cache needs a url")
		}
		return OpenRedisCache(ctx, cfg.URL)
	case DriverNone:
		return NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown cache driver %q", cfg.Driver)
	}
}
