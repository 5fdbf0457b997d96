// Package scanner runs a license scanner over a source tree and reports
// raw per-file hits.
//
// The only production scanner is [ScanCode], which shells out to the
// scancode-toolkit CLI and reads its JSON report. [Func] adapts a plain
// function for tests and alternative tools.
package scanner

import (
	"context"

	"github.com/philips-software/bom-base-sub000/pkg/license"
)

// Hit is one license match in one file.
type Hit struct {
	Expression string  `json:"expression"`
	Score      float64 `json:"score"`
	File       string  `json:"file"`
	StartLine  int     `json:"start_line"`
	EndLine    int     `json:"end_line"`
}

// Scanner finds license hits below dir.
type Scanner interface {
	Scan(ctx context.Context, dir string) ([]Hit, error)
}

// Func adapts a function to the Scanner interface.
type Func func(ctx context.Context, dir string) ([]Hit, error)

// Scan calls f.
func (f Func) Scan(ctx context.Context, dir string) ([]Hit, error) { return f(ctx, dir) }

// Merge folds hits into detections, one per distinct expression.
func Merge(hits []Hit) *license.Set {
	set := license.NewSet()
	for _, h := range hits {
		set.Add(license.NewDetection(h.Expression, h.Score, h.File, h.StartLine, h.EndLine))
	}
	return set
}
