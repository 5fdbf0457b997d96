package license

import (
	"strings"
	"unicode"
)

// Entry is one license key found in a file.
type Entry struct {
	Key        string
	Identifier string
	Score      float64
	StartLine  int
	EndLine    int
}

func (e Entry) lines() int { return e.EndLine - e.StartLine + 1 }

// Dictionary maps the license keys of one file to identifiers.
type Dictionary struct {
	entries map[string]Entry
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]Entry)}
}

// Add records a key. When the key is already known, the entry with the
// higher score is kept and a tie goes to the longer span.
func (d *Dictionary) Add(e Entry) {
	key := strings.ToLower(e.Key)
	if e.Identifier == "" {
		e.Identifier = e.Key
	}
	cur, ok := d.entries[key]
	if !ok || e.Score > cur.Score || (e.Score == cur.Score && e.lines() > cur.lines()) {
		d.entries[key] = e
	}
}

// Lookup returns the entry of a key.
func (d *Dictionary) Lookup(key string) (Entry, bool) {
	e, ok := d.entries[strings.ToLower(key)]
	return e, ok
}

// Best returns the entry with the highest score, a tie going to the
// longer span.
func (d *Dictionary) Best() (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range d.entries {
		if !found || e.Score > best.Score || (e.Score == best.Score && e.lines() > best.lines()) ||
			(e.Score == best.Score && e.lines() == best.lines() && e.StartLine < best.StartLine) {
			best, found = e, true
		}
	}
	return best, found
}

// Resolved is an expression rewritten to identifiers.
type Resolved struct {
	Expression string
	Score      float64
	StartLine  int
	EndLine    int
}

var operators = map[string]string{"and": "AND", "or": "OR", "with": "WITH"}

// Resolve rewrites every key of expression to its identifier. Tokens that
// are not in the dictionary pass through unchanged. The score is the
// lowest score among the known keys and the line range covers all of
// them. An expression without known keys resolves with a zero score.
func (d *Dictionary) Resolve(expression string) Resolved {
	var (
		out   strings.Builder
		res   Resolved
		found bool
	)
	for i, tok := range tokenize(expression) {
		switch {
		case tok == "(" || tok == ")":
		case operators[strings.ToLower(tok)] != "":
			tok = operators[strings.ToLower(tok)]
		default:
			if e, ok := d.Lookup(tok); ok {
				tok = e.Identifier
				if !found || e.Score < res.Score {
					res.Score = e.Score
				}
				if !found || e.StartLine < res.StartLine {
					res.StartLine = e.StartLine
				}
				if !found || e.EndLine > res.EndLine {
					res.EndLine = e.EndLine
				}
				found = true
			}
		}
		if i > 0 && tok != ")" && !strings.HasSuffix(out.String(), "(") {
			out.WriteByte(' ')
		}
		out.WriteString(tok)
	}
	res.Expression = out.String()
	return res
}

// tokenize splits an expression into words and parentheses.
func tokenize(expression string) []string {
	var (
		tokens []string
		word   strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range expression {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}
