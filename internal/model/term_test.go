package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	t.Parallel()

	term, err := ParseTerm("2025FA")
	require.NoError(t, err)
	assert.Equal(t, Term{Year: 2025, Season: SeasonFall}, term)
	assert.Equal(t, "2025FA", term.Code())

	_, err = ParseTerm("FA2025")
	assert.Error(t, err)
	_, err = ParseTerm("2025XX")
	assert.Error(t, err)
}

func TestTermOrdering(t *testing.T) {
	t.Parallel()

	sp := Term{Year: 2026, Season: SeasonSpring}
	su := Term{Year: 2026, Season: SeasonSummer}
	fa := Term{Year: 2026, Season: SeasonFall}

	assert.True(t, sp.Before(su))
	assert.True(t, su.Before(fa))
	assert.True(t, fa.Before(Term{Year: 2027, Season: SeasonSpring}))
	assert.Equal(t, 0, sp.Compare(sp))
}

func TestTermNext(t *testing.T) {
	t.Parallel()

	fa25 := Term{Year: 2025, Season: SeasonFall}
	assert.Equal(t, Term{Year: 2026, Season: SeasonSpring}, fa25.Next(false))

	sp26 := Term{Year: 2026, Season: SeasonSpring}
	assert.Equal(t, Term{Year: 2026, Season: SeasonFall}, sp26.Next(false))
	assert.Equal(t, Term{Year: 2026, Season: SeasonSummer}, sp26.Next(true))
	assert.Equal(t, Term{Year: 2026, Season: SeasonFall}, Term{Year: 2026, Season: SeasonSummer}.Next(false))
}

func TestTermTextRoundTrip(t *testing.T) {
	t.Parallel()

	orig := Term{Year: 2027, Season: SeasonSummer}
	b, err := orig.MarshalText()
	require.NoError(t, err)

	var back Term
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, orig, back)
}
