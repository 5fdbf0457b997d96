package registry

import (
	"context"
	"fmt"

	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// Event announces one cascade round for a package.
//
// Fields holds the fields that changed and Values the package values at the
// moment of the change. An event with no fields and no values announces a
// package that was just created.
type Event struct {
	PURL   purl.PURL
	Fields meta.FieldSet
	Values map[meta.Field]meta.Value
}

// IsNew reports whether the event announces a newly created package.
func (e Event) IsNew() bool { return e.Fields.IsEmpty() }

// Changed reports whether any of fields changed in this round.
func (e Event) Changed(fields ...meta.Field) bool { return e.Fields.HasAny(fields...) }

// Value returns a value of the snapshot.
func (e Event) Value(f meta.Field) (meta.Value, bool) {
	v, ok := e.Values[f]
	return v, ok && !v.IsEmpty()
}

// Task is deferred work scheduled by a listener. It runs on a runner worker
// against a fresh editor for the event's package.
type Task func(ctx context.Context, ed *meta.Editor) error

// Listener decides whether an event calls for follow-up work.
//
// OnUpdated must not block, perform I/O or mutate anything. It returns nil
// when there is nothing to do, or a Task that captures what it needs.
type Listener interface {
	OnUpdated(ev Event) Task
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ev Event) Task

// OnUpdated calls f(ev).
func (f ListenerFunc) OnUpdated(ev Event) Task { return f(ev) }

// Named is implemented by listeners that report a name for logs and metrics.
type Named interface {
	Name() string
}

func listenerName(l Listener) string {
	if n, ok := l.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", l)
}
