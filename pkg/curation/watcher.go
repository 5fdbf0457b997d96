package curation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before reloading.
const DefaultDebounce = 200 * time.Millisecond

// Editor edits packages; *registry.Registry implements it.
type Editor interface {
	Edit(ctx context.Context, p purl.PURL, fn func(ed *meta.Editor) error) error
}

// Watcher keeps a Set in sync with a curation file and pushes changed
// curations into the registry.
type Watcher struct {
	path     string
	set      *Set
	reg      Editor
	logger   *log.Logger
	Debounce time.Duration
}

// NewWatcher returns a watcher for the file at path.
func NewWatcher(path string, set *Set, reg Editor, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "curation path %q", path)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{path: abs, set: set, reg: reg, logger: logger, Debounce: DefaultDebounce}, nil
}

// Load reads the file, replaces the set and applies every new or changed
// entry. A file that fails to parse leaves the set untouched.
func (w *Watcher) Load(ctx context.Context) error {
	entries, err := Load(w.path)
	if err != nil {
		return err
	}
	changed := w.set.Replace(entries)
	w.logger.Info("loaded curations", "file", w.path, "packages", len(entries), "changed", len(changed))
	for _, e := range changed {
		values := e.Values
		if err := w.reg.Edit(ctx, e.PURL, func(ed *meta.Editor) error {
			return Write(ed, values)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Run reloads the file whenever it changes until ctx is done. It watches
// the parent directory so that editors replacing the file are noticed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "watch %s", w.path)
	}
	w.logger.Debug("watching curations", "file", w.path)

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				reload = time.After(w.Debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("curation watcher", "err", err)

		case <-reload:
			reload = nil
			if err := w.Load(ctx); err != nil {
				w.logger.Warn("reloading curations", "file", w.path, "err", err)
			}
		}
	}
}
