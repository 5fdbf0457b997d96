package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// DefaultRedisPrefix namespaces all keys written by the Redis store.
const DefaultRedisPrefix = "bombase:"

// Redis stores each package as a JSON string. Coordinates are indexed in a
// sorted set with equal scores so listing is lexicographic.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the server at url (redis://host:port/db).
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis")
	}
	return NewRedis(client, DefaultRedisPrefix), nil
}

// NewRedis wraps an existing client. The store owns the client from now on.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) docKey(p purl.PURL) string { return r.prefix + "pkg:" + p.Key() }
func (r *Redis) indexKey() string          { return r.prefix + "packages" }

func (r *Redis) CreatePackage(ctx context.Context, p purl.PURL) (*meta.Package, error) {
	data, err := encode(meta.NewPackage(p))
	if err != nil {
		return nil, err
	}
	created, err := r.client.SetNX(ctx, r.docKey(p), data, 0).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create %s", p.Key())
	}
	if err := r.client.ZAdd(ctx, r.indexKey(), redis.Z{Member: p.Key()}).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "index %s", p.Key())
	}
	if created {
		return decode(data)
	}
	pkg, _, err := r.FindPackage(ctx, p)
	return pkg, err
}

func (r *Redis) FindPackage(ctx context.Context, p purl.PURL) (*meta.Package, bool, error) {
	data, err := r.client.Get(ctx, r.docKey(p)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "find %s", p.Key())
	}
	pkg, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return pkg, true, nil
}

func (r *Redis) FindPackages(ctx context.Context, f Filter) ([]*meta.Package, error) {
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list packages")
	}

	var keys []string
	for _, m := range members {
		p, err := purl.Parse(m)
		if err != nil || !f.Matches(p) {
			continue
		}
		keys = append(keys, r.docKey(p))
		if len(keys) == f.limit() {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	docs, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load packages")
	}
	out := make([]*meta.Package, 0, len(docs))
	for _, d := range docs {
		s, ok := d.(string)
		if !ok {
			continue
		}
		pkg, err := decode([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

func (r *Redis) SavePackage(ctx context.Context, pkg *meta.Package) error {
	data, err := encode(pkg)
	if err != nil {
		return err
	}
	p := pkg.PURL()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(p), data, 0)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Member: p.Key()})
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save %s", p.Key())
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)
