// Package license merges license evidence reported by a scanner.
//
// A scanner reports many hits per source tree: an expression, a score and
// the lines of a file where it matched. [Set] folds hits of the same
// expression into one [Detection], keeping the strongest location and
// counting confirmations. Hits found in test, sample or documentation
// paths are kept but marked ignored unless a regular file confirms them.
//
// [Aggregate] turns the detections into one confidence on the trust scale,
// weighting each score by its number of confirmations.
//
// Scanners that report per-file license keys rather than identifiers go
// through a [Dictionary], which maps the keys of one file to identifiers
// and resolves the file's expressions.
package license
