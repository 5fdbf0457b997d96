// Package registry implements the edit and cascade protocol over stored
// packages.
//
// All mutation goes through [Registry.Edit]. The registry locates or creates
// the package, runs the caller's edit function against a [meta.Editor] and,
// when any field changed, posts an [Event] to every registered [Listener].
// Listeners are pure decision functions: they inspect the event and may
// return a [Task]. Tasks are executed by the [Runner] on a bounded worker
// pool against a fresh editor, and whatever a task changed is posted as a
// new event. Cascades therefore proceed as an explicit loop of
// event -> task -> event until no listener volunteers more work.
//
// # Concurrency
//
// Every read-modify-write of a package, whether from Edit or from a task,
// holds the per-coordinate lock of a [LockTable] from the store read to the
// store write. Different packages proceed in parallel; there is no ordering
// between tasks, including tasks for the same package.
//
// Cascades have no cycle breaker. Listeners must gate on the fields they
// consume and never react to the fields they write.
//
// # Errors
//
// Validation and unknown-package errors are returned synchronously by Edit
// and the read methods. Errors inside tasks are logged and confined to the
// task; a failed or panicking task is discarded whole, like a failed edit
// function, so nothing it changed is saved or announced.
package registry
