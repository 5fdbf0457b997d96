// Package meta holds the trust-scored metadata model of a package.
//
// # Overview
//
// Metadata about a package arrives from many sources that do not trust each
// other. Each piece of metadata lands in an [Attribute]: a cell for one
// [Field] holding a primary value with its score and the best value that
// lost a promotion contest. Scores live on the [Trust] scale; a score of
// [Truth] freezes the value against automatic downgrade.
//
// A [Package] owns at most one Attribute per Field. Mutations go through an
// [Editor], a single-use context that records which fields actually changed
// and keeps a snapshot of the values for the notification that follows.
//
// # Values
//
// [Value] is a tagged union. Every Field fixes the [Kind] it accepts;
// assigning a value of another kind is a validation error, never a
// coercion:
//
//	e.Update(meta.Title, meta.Likely, meta.String("left-pad"))
//	e.Update(meta.SourceLocation, meta.Certain, meta.MustURI("git+https://github.com/x/y"))
//
// # Concurrency
//
// Nothing in this package is safe for concurrent mutation. The registry
// serializes all access to one package behind a per-coordinate lock.
package meta
