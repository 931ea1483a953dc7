package models

import (
	"fmt"
	"strconv"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
)

// Season identifies the term within an academic year.
type Season byte

const (
	SeasonWinter Season = 'W'
	SeasonSummer Season = 'S'
	SeasonFall   Season = 'F'
)

// seasonRank orders seasons chronologically inside a calendar year.
var seasonRank = map[Season]int{
	SeasonWinter: 1,
	SeasonSummer: 2,
	SeasonFall:   3,
}

// IsValid returns true for F, W and S.
func (s Season) IsValid() bool {
	_, ok := seasonRank[s]
	return ok
}

// TermCode is an academic term such as 2024F.
type TermCode struct {
	Year   int
	Season Season
}

// NewTermCode builds a term code without validating the season.
func NewTermCode(year int, season Season) TermCode {
	return TermCode{Year: year, Season: season}
}

// ParseTermCode parses the canonical "YYYYS" form (e.g. "2025W").
func ParseTermCode(value string) (TermCode, error) {
	if len(value) != 5 {
		return TermCode{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidTermCode, value)
	}
	for i := range 4 {
		if value[i] < '0' || value[i] > '9' {
			return TermCode{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidTermCode, value)
		}
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil {
		return TermCode{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidTermCode, value)
	}
	term := TermCode{Year: year, Season: Season(value[4])}
	if !term.Season.IsValid() {
		return TermCode{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidTermCode, value)
	}
	return term, nil
}

// MustParseTermCode is ParseTermCode for compile-time constants. It panics on bad input.
func MustParseTermCode(value string) TermCode {
	term, err := ParseTermCode(value)
	if err != nil {
		panic(err)
	}
	return term
}

func (t TermCode) String() string {
	return fmt.Sprintf("%04d%c", t.Year, t.Season)
}

// Next advances one term: F moves to W of the following year, W to S, S to F.
func (t TermCode) Next() (TermCode, error) {
	switch t.Season {
	case SeasonFall:
		return TermCode{Year: t.Year + 1, Season: SeasonWinter}, nil
	case SeasonWinter:
		return TermCode{Year: t.Year, Season: SeasonSummer}, nil
	case SeasonSummer:
		return TermCode{Year: t.Year, Season: SeasonFall}, nil
	default:
		return TermCode{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidTermCode, t.String())
	}
}

// Compare orders terms chronologically by (year, season rank).
// Unknown seasons rank before Winter.
func (t TermCode) Compare(other TermCode) int {
	if t.Year != other.Year {
		if t.Year < other.Year {
			return -1
		}
		return 1
	}
	a, b := seasonRank[t.Season], seasonRank[other.Season]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is chronologically earlier than other.
func (t TermCode) Before(other TermCode) bool {
	return t.Compare(other) < 0
}

// TermSequence returns n consecutive terms beginning at start.
func TermSequence(start TermCode, n int) ([]TermCode, error) {
	if n <= 0 {
		return nil, nil
	}
	if !start.Season.IsValid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidTermCode, start.String())
	}

	terms := make([]TermCode, 0, n)
	terms = append(terms, start)
	for len(terms) < n {
		next, err := terms[len(terms)-1].Next()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	return terms, nil
}
