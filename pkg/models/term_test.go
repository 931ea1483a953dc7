package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
)

func TestParseTermCode(t *testing.T) {
	term, err := ParseTermCode("2025W")
	require.NoError(t, err)
	assert.Equal(t, TermCode{Year: 2025, Season: SeasonWinter}, term)
	assert.Equal(t, "2025W", term.String())

	for _, bad := range []string{"", "2025", "2025X", "20a5F", "2025FF", "2025f"} {
		_, err := ParseTermCode(bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTermCode, bad)
	}
}

func TestParseTermCode_RequiresFourDigitYear(t *testing.T) {
	for _, bad := range []string{"+202F", "-123F", " 202F", "0x1F"} {
		_, err := ParseTermCode(bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTermCode, bad)
	}

	term, err := ParseTermCode("0999S")
	require.NoError(t, err)
	assert.Equal(t, "0999S", term.String())
}

func TestTermCode_Next(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"2025F", "2026W"},
		{"2026W", "2026S"},
		{"2026S", "2026F"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			next, err := MustParseTermCode(tt.from).Next()
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.String())
		})
	}

	_, err := NewTermCode(2025, 'Q').Next()
	assert.ErrorIs(t, err, apperrors.ErrInvalidTermCode)
}

func TestTermCode_Compare(t *testing.T) {
	w := MustParseTermCode("2025W")
	s := MustParseTermCode("2025S")
	f := MustParseTermCode("2025F")
	nextW := MustParseTermCode("2026W")

	assert.True(t, w.Before(s))
	assert.True(t, s.Before(f))
	assert.True(t, f.Before(nextW))
	assert.False(t, f.Before(f))
	assert.Equal(t, 0, f.Compare(f))
	assert.Equal(t, 1, nextW.Compare(w))
}

func TestTermSequence(t *testing.T) {
	terms, err := TermSequence(MustParseTermCode("2024F"), 4)
	require.NoError(t, err)

	got := make([]string, len(terms))
	for i, term := range terms {
		got[i] = term.String()
	}
	assert.Equal(t, []string{"2024F", "2025W", "2025S", "2025F"}, got)

	empty, err := TermSequence(MustParseTermCode("2024F"), 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = TermSequence(NewTermCode(2024, 'X'), 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTermCode)
}

func TestMustParseTermCode_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseTermCode("bad") })
}
