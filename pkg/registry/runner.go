package registry

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/observability"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

// Default runner sizing.
const (
	DefaultWorkers     = 4
	DefaultCoreWorkers = 2
	DefaultIdleTimeout = 30 * time.Second
)

// ErrRunnerClosed is returned by Submit after Close.
var ErrRunnerClosed = errors.New(errors.ErrCodeInternal, "task runner is closed")

// RunnerOptions sizes the worker pool.
type RunnerOptions struct {
	// Workers is the maximum number of concurrently running tasks.
	Workers int
	// CoreWorkers are started up front and never exit. Extra workers up to
	// Workers are started when work backs up and exit after IdleTimeout.
	CoreWorkers int
	IdleTimeout time.Duration
}

func (o RunnerOptions) withDefaults() RunnerOptions {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.CoreWorkers <= 0 {
		o.CoreWorkers = DefaultCoreWorkers
	}
	if o.CoreWorkers > o.Workers {
		o.CoreWorkers = o.Workers
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	return o
}

// Runner executes listener tasks on a bounded pool of workers.
//
// Submit never blocks: the queue is unbounded and only the number of tasks
// running at once is limited. Each task runs under the package lock against
// a freshly loaded package; its changes are saved and the resulting event
// is handed to the post function, which closes the cascade loop.
type Runner struct {
	store  store.Store
	locks  *LockTable
	post   func(context.Context, Event)
	logger *log.Logger
	opts   RunnerOptions

	ctx    context.Context
	cancel context.CancelFunc
	jobs   chan job
	quit   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending int           // queued and running
	idle    chan struct{} // closed while pending == 0
	workers int
	closing bool // Close called; tasks are accepted only while work is pending
	closed  bool
}

type job struct {
	id       string
	purl     purl.PURL
	listener string
	task     Task
}

// NewRunner starts the core workers. post receives the event of every task
// that changed at least one field; it may be nil.
func NewRunner(s store.Store, locks *LockTable, post func(context.Context, Event), opts RunnerOptions, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if locks == nil {
		locks = NewLockTable()
	}
	if post == nil {
		post = func(context.Context, Event) {}
	}
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	r := &Runner{
		store:  s,
		locks:  locks,
		post:   post,
		logger: logger,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan job, opts.Workers*16),
		quit:   make(chan struct{}),
		idle:   idle,
	}
	for range opts.CoreWorkers {
		r.spawn(true)
	}
	return r
}

// Submit queues a task for the package p. listener names the origin of the
// task in logs and metrics. While Close drains, tasks are accepted as long
// as earlier work is still queued or running.
func (r *Runner) Submit(p purl.PURL, listener string, task Task) error {
	j := job{id: uuid.NewString(), purl: p, listener: listener, task: task}

	r.mu.Lock()
	if r.closed || (r.closing && r.pending == 0) {
		r.mu.Unlock()
		return ErrRunnerClosed
	}
	if r.pending == 0 {
		r.idle = make(chan struct{})
	}
	r.pending++
	if r.pending > r.workers && r.workers < r.opts.Workers {
		r.spawn(false)
	}
	r.mu.Unlock()

	select {
	case r.jobs <- j:
	default:
		go func() { r.jobs <- j }()
	}
	return nil
}

// spawn starts a worker. Callers hold r.mu or own r exclusively.
func (r *Runner) spawn(core bool) {
	r.workers++
	r.wg.Add(1)
	go r.worker(core)
}

func (r *Runner) worker(core bool) {
	defer r.wg.Done()

	var timeout <-chan time.Time
	var timer *time.Timer
	if !core {
		timer = time.NewTimer(r.opts.IdleTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case j := <-r.jobs:
			r.execute(j)
			r.done()
			if timer != nil {
				timer.Reset(r.opts.IdleTimeout)
			}
		case <-timeout:
			r.mu.Lock()
			r.workers--
			r.mu.Unlock()
			return
		case <-r.quit:
			return
		}
	}
}

func (r *Runner) done() {
	r.mu.Lock()
	r.pending--
	if r.pending == 0 {
		close(r.idle)
		r.closed = r.closing
	}
	r.mu.Unlock()
}

func (r *Runner) execute(j job) {
	ctx := r.ctx
	logger := r.logger.With("task", j.id, "purl", j.purl, "listener", j.listener)
	logger.Debug("task started")

	start := time.Now()
	observability.Cascade().OnTaskStart(ctx, j.listener)
	ev, err := r.apply(ctx, j)
	elapsed := time.Since(start)
	observability.Cascade().OnTaskComplete(ctx, j.listener, elapsed, err)

	switch {
	case err == nil:
		logger.Debug("task finished", "changed", ev.Fields, "duration", elapsed.Round(time.Millisecond))
	case isSourceError(err):
		logger.Warn("source unavailable", "err", err)
	default:
		logger.Error("task failed", "err", err)
	}

	if !ev.Fields.IsEmpty() {
		r.post(ctx, ev)
	}
}

// apply runs the task under the package lock and saves what it changed.
// A task that fails or panics is discarded whole.
func (r *Runner) apply(ctx context.Context, j job) (Event, error) {
	unlock := r.locks.Lock(j.purl.Key())
	defer unlock()

	pkg, ok, err := r.store.FindPackage(ctx, j.purl)
	if err != nil {
		return Event{}, err
	}
	if !ok {
		r.logger.Debug("package disappeared, task dropped", "purl", j.purl)
		return Event{}, nil
	}

	ed := meta.NewEditor(pkg)
	if err := runTask(ctx, j.task, ed); err != nil {
		return Event{}, err
	}

	ev := Event{PURL: j.purl, Fields: ed.ModifiedFields()}
	if ev.Fields.IsEmpty() {
		return ev, nil
	}
	if err := r.store.SavePackage(ctx, pkg); err != nil {
		return Event{}, err
	}
	ev.Values = ed.Snapshot()
	return ev, nil
}

func runTask(ctx context.Context, task Task, ed *meta.Editor) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.ErrCodeInternal, "task panicked: %v", p)
		}
	}()
	return task(ctx, ed)
}

func isSourceError(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeSource, errors.ErrCodeNetwork, errors.ErrCodeTimeout, errors.ErrCodeRateLimited:
		return true
	}
	return false
}

// Pending returns the number of queued and running tasks.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Wait blocks until no task is queued or running, including tasks started
// by cascades of the tasks being waited for.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for queued tasks and the cascades they trigger to drain, then
// rejects further tasks. When ctx ends first, running tasks are cancelled
// and the context error returned.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		return nil
	}
	r.closing = true
	r.closed = r.pending == 0
	r.mu.Unlock()

	err := r.Wait(ctx)
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	close(r.quit)
	r.cancel()
	if err == nil {
		r.wg.Wait()
	}
	return err
}
