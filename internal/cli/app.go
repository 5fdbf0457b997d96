package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/philips-software/bom-base-sub000/internal/config"
	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/curation"
	"github.com/philips-software/bom-base-sub000/pkg/harvest"
	"github.com/philips-software/bom-base-sub000/pkg/integrations/github"
	"github.com/philips-software/bom-base-sub000/pkg/registry"
	"github.com/philips-software/bom-base-sub000/pkg/scanner"
	"github.com/philips-software/bom-base-sub000/pkg/source"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

// app is a wired registry with its backends.
type app struct {
	store    store.Store
	cache    cache.Cache
	registry *registry.Registry
	watcher  *curation.Watcher
	logger   *log.Logger
}

// newApp opens the store and, when harvesting, the cache and every
// configured harvester.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger, harvesting bool) (*app, error) {
	st, err := store.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return nil, err
	}
	a := &app{store: st, logger: logger}

	var listeners []registry.Listener
	var curations *curation.Set
	if harvesting {
		if a.cache, err = cache.Open(ctx, cfg.CacheConfig()); err != nil {
			st.Close()
			return nil, err
		}
		if listeners, err = a.harvesters(cfg); err != nil {
			a.closeBackends()
			return nil, err
		}
		if cfg.Curation.File != "" {
			curations = curation.NewSet()
			listeners = append(listeners, harvest.NewCurationListener(curations, logger))
		}
	}

	a.registry = registry.New(st, registry.Options{
		Runner:    cfg.RunnerOptions(),
		Listeners: listeners,
		Logger:    logger,
	})

	if curations != nil {
		w, err := curation.NewWatcher(cfg.Curation.File, curations, a.registry, logger)
		if err == nil {
			err = w.Load(ctx)
		}
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		if cfg.Curation.Watch {
			a.watcher = w
		}
	}
	return a, nil
}

func (a *app) harvesters(cfg *config.Config) ([]registry.Listener, error) {
	var listeners []registry.Listener
	opts := harvest.SourceOptions{
		Cache:         a.cache,
		TTL:           cfg.Cache.TTL,
		RatePerSecond: cfg.Harvest.RatePerSecond,
	}
	for _, name := range cfg.Harvest.Sources {
		src, err := harvest.NewRegistrySource(name, opts)
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, harvest.NewMetadataListener(src, a.logger))
	}

	gh := github.NewClient(a.cache, cfg.Harvest.GitHubToken, cfg.Cache.TTL)
	gh.SetRateLimit(cfg.Harvest.RatePerSecond)
	listeners = append(listeners, harvest.NewGitHubListener(gh, a.logger))

	if cfg.Scanner.Enabled {
		listeners = append(listeners, harvest.NewLicenseScanListener(
			source.NewFetcher(cfg.Scanner.Workdir),
			scanner.NewScanCode(cfg.Scanner.Command, a.logger),
			cfg.Scanner.Timeout,
			a.logger,
		))
	}
	return listeners, nil
}

// watch follows the curation file until ctx is done, if configured.
func (a *app) watch(ctx context.Context) {
	if a.watcher == nil {
		return
	}
	go func() {
		if err := a.watcher.Run(ctx); err != nil {
			a.logger.Warn("curation watcher stopped", "err", err)
		}
	}()
}

// Close drains the runner and closes the backends.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.registry != nil {
		errs = append(errs, a.registry.Close(ctx))
	}
	errs = append(errs, a.closeBackends())
	return errors.Join(errs...)
}

func (a *app) closeBackends() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
