package scanner

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/license"
)

// DefaultCommand is the scancode-toolkit executable.
const DefaultCommand = "scancode"

// ScanCode runs the scancode-toolkit CLI.
type ScanCode struct {
	Command   string
	Processes int
	// FileTimeout bounds the time spent on a single file.
	FileTimeout time.Duration
	Logger      *log.Logger
}

// NewScanCode returns a scanner using command, or DefaultCommand when empty.
func NewScanCode(command string, logger *log.Logger) *ScanCode {
	if command == "" {
		command = DefaultCommand
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ScanCode{Command: command, Processes: 2, FileTimeout: 2 * time.Minute, Logger: logger}
}

// Scan runs the CLI over dir and parses its JSON report from stdout.
func (s *ScanCode) Scan(ctx context.Context, dir string) ([]Hit, error) {
	args := []string{
		"--license", "--quiet", "--strip-root",
		"--processes", strconv.Itoa(max(s.Processes, 1)),
		"--timeout", strconv.Itoa(int(s.FileTimeout.Seconds())),
		"--json-pp", "-",
		dir,
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	s.Logger.Debug("scanning", "dir", dir, "command", s.Command)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "scan of %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeSource, err, "scancode: %s", strings.TrimSpace(stderr.String()))
	}

	hits, err := ParseScanCode(stdout.Bytes(), filepath.Base(dir))
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("scan finished", "dir", dir, "hits", len(hits), "duration", time.Since(start).Round(time.Millisecond))
	return hits, nil
}

// ParseScanCode extracts hits from a ScanCode JSON report. Both the
// license_detections layout (toolkit 32 and later) and the older
// licenses/license_expressions layout are understood. root is stripped
// from file paths when the report was produced without --strip-root.
func ParseScanCode(data []byte, root string) ([]Hit, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeSource, "scancode report is not valid JSON")
	}

	var hits []Hit
	gjson.GetBytes(data, "files").ForEach(func(_, file gjson.Result) bool {
		if file.Get("type").String() == "directory" {
			return true
		}
		path := relativePath(file.Get("path").String(), root)
		if errors.ValidatePath(path) != nil {
			return true
		}
		if detections := file.Get("license_detections"); detections.Exists() {
			hits = append(hits, parseDetections(path, detections)...)
		} else {
			hits = append(hits, parseLegacy(path, file)...)
		}
		return true
	})
	return hits, nil
}

func relativePath(path, root string) string {
	if root != "" && root != "." {
		path = strings.TrimPrefix(path, root+"/")
	}
	return path
}

// parseDetections reads toolkit 32+ detections: each detection carries its
// SPDX expression and the matches it was built from.
func parseDetections(path string, detections gjson.Result) []Hit {
	var hits []Hit
	detections.ForEach(func(_, det gjson.Result) bool {
		expr := det.Get("license_expression_spdx").String()
		if expr == "" {
			expr = det.Get("license_expression").String()
		}
		if expr == "" {
			return true
		}
		h := Hit{Expression: expr, File: path}
		first := true
		det.Get("matches").ForEach(func(_, m gjson.Result) bool {
			score := m.Get("score").Float()
			start, end := int(m.Get("start_line").Int()), int(m.Get("end_line").Int())
			if first || score < h.Score {
				h.Score = score
			}
			if first || start < h.StartLine {
				h.StartLine = start
			}
			if first || end > h.EndLine {
				h.EndLine = end
			}
			first = false
			return true
		})
		if !first {
			hits = append(hits, h)
		}
		return true
	})
	return hits
}

// parseLegacy reads the pre-32 layout, where matches are keyed by
// scancode license key and expressions are written in those keys. An
// expression naming no known key is kept as written at the best score
// found in the file.
func parseLegacy(path string, file gjson.Result) []Hit {
	dict := license.NewDictionary()
	file.Get("licenses").ForEach(func(_, l gjson.Result) bool {
		key := l.Get("key").String()
		id := l.Get("spdx_license_key").String()
		if id == "" {
			id = "LicenseRef-scancode-" + key
		}
		dict.Add(license.Entry{
			Key:        key,
			Identifier: id,
			Score:      l.Get("score").Float(),
			StartLine:  int(l.Get("start_line").Int()),
			EndLine:    int(l.Get("end_line").Int()),
		})
		return true
	})

	best, _ := dict.Best()
	var hits []Hit
	file.Get("license_expressions").ForEach(func(_, e gjson.Result) bool {
		r := dict.Resolve(e.String())
		if r.Expression == "" {
			return true
		}
		if r.Score == 0 {
			r.Score, r.StartLine, r.EndLine = best.Score, best.StartLine, best.EndLine
		}
		if r.Score <= 0 {
			return true
		}
		hits = append(hits, Hit{
			Expression: r.Expression,
			Score:      r.Score,
			File:       path,
			StartLine:  r.StartLine,
			EndLine:    r.EndLine,
		})
		return true
	})
	return hits
}
