package registry

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/observability"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

// Options configures a Registry.
type Options struct {
	Runner    RunnerOptions
	Listeners []Listener
	Logger    *log.Logger
}

// Registry owns the package store and the listeners, and drives cascades.
// It is safe for concurrent use.
type Registry struct {
	store  store.Store
	locks  *LockTable
	runner *Runner
	logger *log.Logger

	mu        sync.RWMutex
	listeners []Listener
}

// New creates a registry over s and starts its task runner.
func New(s store.Store, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	r := &Registry{
		store:     s,
		locks:     NewLockTable(),
		logger:    opts.Logger,
		listeners: slices.Clone(opts.Listeners),
	}
	r.runner = NewRunner(s, r.locks, r.dispatch, opts.Runner, opts.Logger)
	return r
}

// AddListener registers a listener for all subsequent events.
func (r *Registry) AddListener(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// Edit applies fn to the package p, creating the package first when the
// coordinate is unknown.
//
// A new package is announced to the listeners with an empty event before fn
// runs. When fn returns an error nothing it did is saved. When fn changed
// any field, the change is saved and announced.
func (r *Registry) Edit(ctx context.Context, p purl.PURL, fn func(ed *meta.Editor) error) error {
	if p.IsZero() {
		return errors.New(errors.ErrCodeInvalidPURL, "empty package coordinate")
	}

	unlock := r.locks.Lock(p.Key())
	defer unlock()

	pkg, found, err := r.store.FindPackage(ctx, p)
	if err != nil {
		return err
	}
	if !found {
		if pkg, err = r.store.CreatePackage(ctx, p); err != nil {
			return err
		}
		r.logger.Info("package created", "purl", p)
		observability.Cascade().OnPackageCreated(ctx, p.Type)
		r.dispatch(ctx, Event{PURL: p, Values: map[meta.Field]meta.Value{}})
	}

	ed := meta.NewEditor(pkg)
	if err := fn(ed); err != nil {
		observability.Cascade().OnEdit(ctx, p.Type, 0, err)
		return err
	}

	changed := ed.ModifiedFields()
	observability.Cascade().OnEdit(ctx, p.Type, changed.Len(), nil)
	if changed.IsEmpty() {
		return nil
	}
	if err := r.store.SavePackage(ctx, pkg); err != nil {
		return err
	}
	unlock()

	r.dispatch(ctx, Event{PURL: p, Fields: changed, Values: ed.Snapshot()})
	return nil
}

// dispatch offers ev to every listener and submits the tasks they return.
func (r *Registry) dispatch(ctx context.Context, ev Event) {
	r.mu.RLock()
	listeners := slices.Clone(r.listeners)
	r.mu.RUnlock()

	r.logger.Debug("cascade", "purl", ev.PURL, "fields", ev.Fields)
	for _, l := range listeners {
		name := listenerName(l)
		task := r.decide(l, name, ev)
		observability.Cascade().OnNotify(ctx, name, task != nil)
		if task == nil {
			continue
		}
		if err := r.runner.Submit(ev.PURL, name, task); err != nil {
			r.logger.Warn("task dropped", "purl", ev.PURL, "listener", name, "err", err)
		}
	}
}

// decide calls the listener, isolating the cascade from a panicking one.
func (r *Registry) decide(l Listener, name string, ev Event) (task Task) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("listener panicked", "listener", name, "purl", ev.PURL, "panic", p)
			task = nil
		}
	}()
	return l.OnUpdated(ev)
}

// Package returns a copy of the stored package.
func (r *Registry) Package(ctx context.Context, p purl.PURL) (*meta.Package, error) {
	pkg, ok, err := r.store.FindPackage(ctx, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodePackageNotFound, "package %s not found", p.Key())
	}
	return pkg, nil
}

// Get returns the current primary value of one field.
func (r *Registry) Get(ctx context.Context, p purl.PURL, f meta.Field) (meta.Value, bool, error) {
	pkg, err := r.Package(ctx, p)
	if err != nil {
		return meta.Value{}, false, err
	}
	a, ok := pkg.AttributeFor(f)
	if !ok {
		return meta.Value{}, false, nil
	}
	v, ok := a.Value()
	return v, ok, nil
}

// Values returns all primary values of a package.
func (r *Registry) Values(ctx context.Context, p purl.PURL) (map[meta.Field]meta.Value, error) {
	pkg, err := r.Package(ctx, p)
	if err != nil {
		return nil, err
	}
	return pkg.Values(), nil
}

// Attributes returns the full state of every attribute of a package, in
// field order, including scores and alternatives.
func (r *Registry) Attributes(ctx context.Context, p purl.PURL) ([]meta.AttributeState, error) {
	pkg, err := r.Package(ctx, p)
	if err != nil {
		return nil, err
	}
	var out []meta.AttributeState
	for a := range pkg.Attributes() {
		out = append(out, a.State())
	}
	return out, nil
}

// Find lists stored packages.
func (r *Registry) Find(ctx context.Context, f store.Filter) ([]*meta.Package, error) {
	return r.store.FindPackages(ctx, f)
}

// Wait blocks until all scheduled tasks and their cascades have finished.
func (r *Registry) Wait(ctx context.Context) error {
	return r.runner.Wait(ctx)
}

// Pending returns the number of queued and running tasks.
func (r *Registry) Pending() int {
	return r.runner.Pending()
}

// Close drains the task runner. The store is owned by the caller.
func (r *Registry) Close(ctx context.Context) error {
	return r.runner.Close(ctx)
}
