package registry

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

func TestRunnerBoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	var posted atomic.Int32
	post := func(context.Context, Event) { posted.Add(1) }
	r := NewRunner(s, nil, post, RunnerOptions{Workers: 3, CoreWorkers: 1}, testLogger())

	const n = 30
	var running, peak, ran atomic.Int32
	for i := range n {
		p := purl.MustParse(fmt.Sprintf("pkg:npm/p%d@1.0.0", i))
		s.CreatePackage(ctx, p)
		if err := r.Submit(p, "test", func(_ context.Context, ed *meta.Editor) error {
			cur := running.Add(1)
			defer running.Add(-1)
			for {
				m := peak.Load()
				if cur <= m || peak.CompareAndSwap(m, cur) {
					break
				}
			}
			ran.Add(1)
			time.Sleep(2 * time.Millisecond)
			return ed.Update(meta.Title, meta.Maybe, meta.String("t"))
		}); err != nil {
			t.Fatal(err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Wait(waitCtx); err != nil {
		t.Fatal(err)
	}
	if ran.Load() != n {
		t.Errorf("ran %d tasks, want %d", ran.Load(), n)
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency %d exceeds 3 workers", peak.Load())
	}
	if posted.Load() != n {
		t.Errorf("posted %d events, want %d", posted.Load(), n)
	}
	if err := r.Close(waitCtx); err != nil {
		t.Fatal(err)
	}
}

func TestRunnerDropsMissingPackage(t *testing.T) {
	r := NewRunner(store.NewMemory(), nil, nil, RunnerOptions{}, testLogger())
	var ran atomic.Bool
	r.Submit(leftPad, "test", func(context.Context, *meta.Editor) error {
		ran.Store(true)
		return nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if ran.Load() {
		t.Error("task for unknown package should be dropped")
	}
}

func TestRunnerClosedRejectsSubmit(t *testing.T) {
	r := NewRunner(store.NewMemory(), nil, nil, RunnerOptions{}, testLogger())
	if err := r.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := r.Submit(leftPad, "test", func(context.Context, *meta.Editor) error { return nil })
	if err != ErrRunnerClosed {
		t.Errorf("err = %v, want ErrRunnerClosed", err)
	}
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d", r.Pending())
	}
}

func TestRunnerCloseRunsCascades(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	s.CreatePackage(ctx, leftPad)

	var (
		r        *Runner
		followUp atomic.Bool
		rejected atomic.Bool
	)
	post := func(_ context.Context, ev Event) {
		if !ev.Changed(meta.Title) {
			return
		}
		err := r.Submit(ev.PURL, "cascade", func(_ context.Context, ed *meta.Editor) error {
			followUp.Store(true)
			return ed.Update(meta.Description, meta.Maybe, meta.String("pads strings"))
		})
		rejected.Store(err != nil)
	}
	r = NewRunner(s, nil, post, RunnerOptions{}, testLogger())

	started, release := make(chan struct{}), make(chan struct{})
	r.Submit(leftPad, "test", func(_ context.Context, ed *meta.Editor) error {
		close(started)
		<-release
		return ed.Update(meta.Title, meta.Maybe, meta.String("left-pad"))
	})
	<-started

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	closed := make(chan error, 1)
	go func() { closed <- r.Close(closeCtx) }()
	time.Sleep(10 * time.Millisecond)
	close(release)

	if err := <-closed; err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rejected.Load() || !followUp.Load() {
		t.Error("cascade of a draining task should run")
	}
	if err := r.Submit(leftPad, "test", func(context.Context, *meta.Editor) error { return nil }); err != ErrRunnerClosed {
		t.Errorf("Submit after Close = %v, want ErrRunnerClosed", err)
	}
}

func TestRunnerWaitIdle(t *testing.T) {
	r := NewRunner(store.NewMemory(), nil, nil, RunnerOptions{}, testLogger())
	defer r.Close(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Errorf("Wait on idle runner: %v", err)
	}
}

func TestRunnerOptionsDefaults(t *testing.T) {
	o := RunnerOptions{CoreWorkers: 8, Workers: 2}.withDefaults()
	if o.CoreWorkers != 2 || o.Workers != 2 || o.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("withDefaults = %+v", o)
	}
	o = RunnerOptions{}.withDefaults()
	if o.Workers != DefaultWorkers || o.CoreWorkers != DefaultCoreWorkers {
		t.Errorf("withDefaults = %+v", o)
	}
}
