package cli

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSpinnerDrawsStatus(t *testing.T) {
	var buf bytes.Buffer
	var calls atomic.Int32
	s := newSpinnerTo(context.Background(), &buf, true, "Enriching").
		WithStatus(func() string {
			calls.Add(1)
			return "(2 pending)"
		})
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if calls.Load() == 0 {
		t.Fatal("status func was never called")
	}
	if !strings.Contains(buf.String(), "(2 pending)") {
		t.Errorf("output %q does not contain the status", buf.String())
	}
}

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, false, "Scanning")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("non-terminal spinner wrote %q", buf.String())
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, &bytes.Buffer{}, true, "Waiting")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, true, "Testing")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithError("failed")
}
