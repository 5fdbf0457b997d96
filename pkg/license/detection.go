package license

import (
	"math"
	"path"
	"slices"
	"strings"

	"github.com/philips-software/bom-base-sub000/pkg/meta"
)

var suspiciousParts = []string{"test", "sample", "docs", "demo", "tutorial", "changelog"}

// IsSuspicious reports whether a file path points at content that is not
// representative of the package license, such as tests or samples.
func IsSuspicious(file string) bool {
	lower := strings.ToLower(file)
	for _, s := range suspiciousParts {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Detection is the merged evidence for one license expression.
type Detection struct {
	License       string  `json:"license"`
	Score         float64 `json:"score"`
	File          string  `json:"file"`
	StartLine     int     `json:"start_line"`
	EndLine       int     `json:"end_line"`
	Confirmations int     `json:"confirmations"`
	Ignored       bool    `json:"ignored,omitempty"`
}

// NewDetection records a single observation.
func NewDetection(license string, score float64, file string, start, end int) *Detection {
	return &Detection{
		License:       license,
		Score:         score,
		File:          path.Clean(file),
		StartLine:     start,
		EndLine:       end,
		Confirmations: 1,
		Ignored:       IsSuspicious(file),
	}
}

// Lines returns the number of lines the winning location spans.
func (d *Detection) Lines() int {
	return d.EndLine - d.StartLine + 1
}

// Merge folds other, evidence for the same expression, into d.
//
// The location of other is taken over when it beats d: a regular file
// always beats a suspicious one, otherwise the higher score wins and a tie
// goes to the longer span. Confirmations add up regardless of the winner,
// and d stays ignored only if both sides were.
func (d *Detection) Merge(other *Detection) {
	if d.losesTo(other) {
		d.Score = other.Score
		d.File = other.File
		d.StartLine = other.StartLine
		d.EndLine = other.EndLine
	}
	d.Confirmations += other.Confirmations
	d.Ignored = d.Ignored && other.Ignored
}

func (d *Detection) losesTo(o *Detection) bool {
	switch {
	case d.Ignored && !o.Ignored:
		return true
	case !d.Ignored && o.Ignored:
		return false
	case o.Score != d.Score:
		return o.Score > d.Score
	default:
		return o.Lines() > d.Lines()
	}
}

// Aggregate combines detections into one confidence: the average score
// weighted by confirmations, normalized to the trust scale.
func Aggregate(detections []*Detection) meta.Trust {
	var weighted, confirmations float64
	for _, d := range detections {
		weighted += d.Score * float64(d.Confirmations)
		confirmations += float64(d.Confirmations)
	}
	if confirmations == 0 {
		return meta.None
	}
	return meta.Trust(math.Round(weighted / (confirmations * 100) * float64(meta.MaxScore)))
}

// Set collects detections keyed by expression.
type Set struct {
	byLicense map[string]*Detection
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byLicense: make(map[string]*Detection)}
}

// Add merges one observation into the set. Blank expressions are skipped.
func (s *Set) Add(d *Detection) {
	if strings.TrimSpace(d.License) == "" {
		return
	}
	if cur, ok := s.byLicense[d.License]; ok {
		cur.Merge(d)
		return
	}
	cp := *d
	s.byLicense[d.License] = &cp
}

// Len returns the number of distinct expressions.
func (s *Set) Len() int { return len(s.byLicense) }

// Detections returns all detections, strongest first.
func (s *Set) Detections() []*Detection {
	out := make([]*Detection, 0, len(s.byLicense))
	for _, d := range s.byLicense {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *Detection) int {
		switch {
		case a.Score != b.Score:
			if a.Score > b.Score {
				return -1
			}
			return 1
		case a.Confirmations != b.Confirmations:
			return b.Confirmations - a.Confirmations
		default:
			return strings.Compare(a.License, b.License)
		}
	})
	return out
}

// Accepted returns the detections that are not ignored.
func (s *Set) Accepted() []*Detection {
	var out []*Detection
	for _, d := range s.Detections() {
		if !d.Ignored {
			out = append(out, d)
		}
	}
	return out
}

// Licenses returns the accepted expressions in alphabetical order.
func (s *Set) Licenses() []string {
	var out []string
	for _, d := range s.Accepted() {
		out = append(out, d.License)
	}
	slices.Sort(out)
	return out
}

// Expression joins the accepted expressions into one conjunction.
// Compound members are parenthesized.
func (s *Set) Expression() string {
	parts := s.Licenses()
	if len(parts) == 1 {
		return parts[0]
	}
	for i, p := range parts {
		if strings.ContainsAny(p, " ") {
			parts[i] = "(" + p + ")"
		}
	}
	return strings.Join(parts, " AND ")
}

// Confidence aggregates the accepted detections.
func (s *Set) Confidence() meta.Trust {
	return Aggregate(s.Accepted())
}
