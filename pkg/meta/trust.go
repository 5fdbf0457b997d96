package meta

import (
	"fmt"
	"strconv"
	"strings"
)

// Trust is a confidence score in the range 0..100.
// Named levels mark the qualitative steps of the scale; any integer in
// between is a valid score.
type Trust int

// Named trust levels, ordered from no confidence to verified truth.
const (
	None     Trust = 0
	Maybe    Trust = 20
	Probably Trust = 40
	Likely   Trust = 60
	Certain  Trust = 80
	Truth    Trust = 100
)

// MaxScore is the top of the trust scale.
const MaxScore = int(Truth)

// Levels lists the named trust levels in ascending order.
var Levels = []Trust{None, Maybe, Probably, Likely, Certain, Truth}

var trustNames = map[Trust]string{
	None:     "none",
	Maybe:    "maybe",
	Probably: "probably",
	Likely:   "likely",
	Certain:  "certain",
	Truth:    "truth",
}

// Valid reports whether t can be stored. Scores at or below zero never are.
func (t Trust) Valid() bool {
	return t > 0
}

// Level maps an arbitrary score to the nearest named level.
// Ties resolve to the lower level; scores outside 0..100 are clamped.
func (t Trust) Level() Trust {
	if t <= None {
		return None
	}
	if t >= Truth {
		return Truth
	}
	best := None
	for _, l := range Levels {
		if abs(int(t-l)) < abs(int(t-best)) {
			best = l
		}
	}
	return best
}

// String returns the level name for named levels and the number otherwise.
func (t Trust) String() string {
	if name, ok := trustNames[t]; ok {
		return name
	}
	return fmt.Sprintf("%d", int(t))
}

// ParseTrust accepts a level name ("likely") or a number ("65").
func ParseTrust(s string) (Trust, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range trustNames {
		if name == s {
			return t, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return None, fmt.Errorf("unknown trust level %q", s)
	}
	if n < 0 || n > MaxScore {
		return None, fmt.Errorf("trust score %d out of range 0..%d", n, MaxScore)
	}
	return Trust(n), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
