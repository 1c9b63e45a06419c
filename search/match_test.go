package search

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/launchpad/core"
)

func TestScore_Tiers(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		tier  Tier
	}{
		{"exact", "calculator", "Calculator", TierExact},
		{"exact ignores surrounding space", "  calculator ", "Calculator", TierExact},
		{"substring at start", "calc", "Calculator", TierSubstring},
		{"substring inside", "lat", "Calculator", TierSubstring},
		{"case insensitive", "CALC", "calculator", TierSubstring},
		{"word prefix", "gc", "Google Chrome", TierWordPrefix},
		{"word prefix camel case", "vsc", "VisualStudioCode", TierWordPrefix},
		{"subsequence", "oge", "Google", TierSubsequence},
		{"empty query", "", "Anything", TierBrowse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Score(tt.query, tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.tier, m.Tier)
		})
	}
}

func TestScore_NoMatch(t *testing.T) {
	for _, q := range []string{"xyz", "calculatorx", "rotaluclac"} {
		_, ok := Score(q, "Calculator")
		assert.False(t, ok, q)
	}
}

func TestScore_Precedence(t *testing.T) {
	exact, ok := Score("google chrome", "Google Chrome")
	require.True(t, ok)
	substring, ok := Score("chrome", "Google Chrome")
	require.True(t, ok)
	prefix, ok := Score("gc", "Google Chrome")
	require.True(t, ok)
	subsequence, ok := Score("gogl", "Google Chrome")
	require.True(t, ok)
	browse, ok := Score("", "Google Chrome")
	require.True(t, ok)

	assert.Greater(t, exact.Score, substring.Score)
	assert.Greater(t, substring.Score, prefix.Score)
	assert.Greater(t, prefix.Score, subsequence.Score)
	assert.Greater(t, subsequence.Score, browse.Score)
	assert.Equal(t, BaselineScore, browse.Score)
}

func TestScore_SubstringPrefersWordStart(t *testing.T) {
	start, ok := Score("chrome", "Chrome Browser")
	require.True(t, ok)
	word, ok := Score("chrome", "Google Chrome")
	require.True(t, ok)
	inner, ok := Score("rome", "Google Chrome")
	require.True(t, ok)

	assert.Greater(t, start.Score, word.Score)
	assert.Greater(t, word.Score, inner.Score)
}

func TestScore_SubsequencePrefersTighterMatches(t *testing.T) {
	tight, ok := Score("ace", "xxabcdexx")
	require.True(t, ok)
	loose, ok := Score("ace", "xxaxxxxxxcxxxxxxxxe")
	require.True(t, ok)

	assert.Equal(t, TierSubsequence, tight.Tier)
	assert.Equal(t, TierSubsequence, loose.Tier)
	assert.Greater(t, tight.Score, loose.Score)
}

func TestScore_Positions(t *testing.T) {
	t.Run("substring", func(t *testing.T) {
		m, ok := Score("cal", "Calculator")
		require.True(t, ok)
		assert.Equal(t, []int{0, 1, 2}, m.Positions)
		assert.Equal(t, []Span{{Start: 0, End: 3}}, m.Spans())
	})

	t.Run("word prefix", func(t *testing.T) {
		m, ok := Score("gc", "Google Chrome")
		require.True(t, ok)
		assert.Equal(t, []int{0, 7}, m.Positions)
		assert.Equal(t, []Span{{Start: 0, End: 1}, {Start: 7, End: 8}}, m.Spans())
	})

	t.Run("runes not bytes", func(t *testing.T) {
		m, ok := Score("é", "Café")
		require.True(t, ok)
		assert.Equal(t, []int{3}, m.Positions)
	})

	t.Run("subsequence positions spell the query", func(t *testing.T) {
		text := []rune("Google Chrome")
		m, ok := Score("ogcr", "Google Chrome")
		require.True(t, ok)
		require.Len(t, m.Positions, 4)
		for i, p := range m.Positions {
			if i > 0 {
				assert.Greater(t, p, m.Positions[i-1])
			}
			assert.Equal(t, []rune("ogcr")[i], unicode.ToLower(text[p]))
		}
	})

	t.Run("empty query has no positions", func(t *testing.T) {
		m, ok := Score("", "Calculator")
		require.True(t, ok)
		assert.Empty(t, m.Positions)
		assert.Nil(t, m.Spans())
	})
}

func TestMatch_Spans(t *testing.T) {
	m := Match{Positions: []int{0, 1, 2, 5, 7, 8}}
	assert.Equal(t, []Span{{0, 3}, {5, 6}, {7, 9}}, m.Spans())
}

func TestMatchEntry_FieldFallback(t *testing.T) {
	e := &core.Entry{
		ID:       "firefox",
		Title:    "Firefox",
		Subtitle: "Web Browser",
		Keywords: "internet www",
		Enabled:  true,
	}

	m, ok := MatchEntry(e, "fire")
	require.True(t, ok)
	assert.Equal(t, FieldTitle, m.Field)

	m, ok = MatchEntry(e, "browser")
	require.True(t, ok)
	assert.Equal(t, FieldSubtitle, m.Field)
	assert.Equal(t, TierSubstring, m.Tier)
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10}, m.Positions)

	m, ok = MatchEntry(e, "internet")
	require.True(t, ok)
	assert.Equal(t, FieldKeywords, m.Field)

	_, ok = MatchEntry(e, "zzz")
	assert.False(t, ok)
}

func TestMatchEntry_FallbackRanksBelowTitle(t *testing.T) {
	title := &core.Entry{ID: "a", Title: "Browser", Enabled: true}
	subtitle := &core.Entry{ID: "b", Title: "Firefox", Subtitle: "Browser", Enabled: true}

	mt, ok := MatchEntry(title, "browser")
	require.True(t, ok)
	ms, ok := MatchEntry(subtitle, "browser")
	require.True(t, ok)
	assert.Greater(t, mt.Score, ms.Score)
}

func TestMatchEntry_FullTitleScoresHighest(t *testing.T) {
	e := &core.Entry{ID: "calc", Title: "Calculator", Subtitle: "Basic arithmetic", Enabled: true}
	full, ok := MatchEntry(e, "Calculator")
	require.True(t, ok)

	for _, q := range []string{"c", "cal", "calc", "lat", "clt", "ctr", "calculato", "arith", "basic"} {
		m, ok := MatchEntry(e, q)
		if !ok {
			continue
		}
		assert.GreaterOrEqual(t, full.Score, m.Score, q)
	}
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "exact", TierExact.String())
	assert.Equal(t, "subsequence", TierSubsequence.String())
	assert.Equal(t, "title", FieldTitle.String())
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "[Cal]culator", Highlight("Calculator", []Span{{0, 3}}, "[", "]"))
	assert.Equal(t, "[G]oogle [C]hrome", Highlight("Google Chrome", []Span{{0, 1}, {7, 8}}, "[", "]"))
	assert.Equal(t, "Caf<é>", Highlight("Café", []Span{{3, 4}}, "<", ">"))
	assert.Equal(t, "plain", Highlight("plain", nil, "[", "]"))
}
