package model

import (
	"fmt"
	"regexp"
)

// Season is the portion of the academic year a term falls in.
type Season string

const (
	SeasonSpring Season = "SP"
	SeasonSummer Season = "SU"
	SeasonFall   Season = "FA"
)

// seasonOrder fixes chronological order within a calendar year.
var seasonOrder = map[Season]int{
	SeasonSpring: 0,
	SeasonSummer: 1,
	SeasonFall:   2,
}

// Valid reports whether s is a known season.
func (s Season) Valid() bool {
	_, ok := seasonOrder[s]
	return ok
}

// Term identifies one academic term, e.g. Fall 2025.
// The zero value is "no term".
type Term struct {
	Year   int
	Season Season
}

var termCodeRe = regexp.MustCompile(`^(\d{4})(SP|SU|FA)$`)

// ParseTerm parses a compact term code like "2025FA".
func ParseTerm(code string) (Term, error) {
	m := termCodeRe.FindStringSubmatch(code)
	if m == nil {
		return Term{}, fmt.Errorf("invalid term code %q", code)
	}
	var year int
	fmt.Sscanf(m[1], "%d", &year)
	return Term{Year: year, Season: Season(m[2])}, nil
}

// IsZero reports whether t is the "no term" value.
func (t Term) IsZero() bool {
	return t.Year == 0 && t.Season == ""
}

// Code returns the compact form, e.g. "2025FA".
func (t Term) Code() string {
	return fmt.Sprintf("%04d%s", t.Year, t.Season)
}

// Compare returns -1, 0 or 1 as t sorts before, equal to or after o.
func (t Term) Compare(o Term) int {
	if t.Year != o.Year {
		if t.Year < o.Year {
			return -1
		}
		return 1
	}
	ts, os := seasonOrder[t.Season], seasonOrder[o.Season]
	if ts != os {
		if ts < os {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether t is strictly earlier than o.
func (t Term) Before(o Term) bool { return t.Compare(o) < 0 }

// Next returns the following term. Summer is skipped unless includeSummer.
func (t Term) Next(includeSummer bool) Term {
	switch t.Season {
	case SeasonSpring:
		if includeSummer {
			return Term{Year: t.Year, Season: SeasonSummer}
		}
		return Term{Year: t.Year, Season: SeasonFall}
	case SeasonSummer:
		return Term{Year: t.Year, Season: SeasonFall}
	default:
		return Term{Year: t.Year + 1, Season: SeasonSpring}
	}
}

// MarshalText encodes t as its compact code so terms serialize cleanly in
// JSON bodies and as map keys.
func (t Term) MarshalText() ([]byte, error) {
	return []byte(t.Code()), nil
}

// UnmarshalText decodes a compact term code.
func (t *Term) UnmarshalText(b []byte) error {
	parsed, err := ParseTerm(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
