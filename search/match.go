package search

import (
	"math"

	"github.com/poiesic/launchpad/core"
)

// Tier is the kind of match found, in increasing order of strength.
type Tier int

const (
	TierNone Tier = iota
	// TierBrowse is the empty query, which matches every entry.
	TierBrowse
	// TierSubsequence: query runes appear in order with gaps.
	TierSubsequence
	// TierWordPrefix: query is covered by contiguous runs that each begin at a word start.
	TierWordPrefix
	// TierSubstring: query appears contiguously.
	TierSubstring
	// TierExact: query equals the whole field.
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierBrowse:
		return "browse"
	case TierSubsequence:
		return "subsequence"
	case TierWordPrefix:
		return "word-prefix"
	case TierSubstring:
		return "substring"
	case TierExact:
		return "exact"
	default:
		return "none"
	}
}

// Field names the entry field a match was found in.
type Field int

const (
	FieldNone Field = iota
	FieldTitle
	FieldSubtitle
	FieldKeywords
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldSubtitle:
		return "subtitle"
	case FieldKeywords:
		return "keywords"
	default:
		return "none"
	}
}

// Score bands. Every tier's range sits above the one below it.
// Substring: +60 at the start, +40 at a word start, minus the offset up to 40.
// Word prefix: minus 15 per extra run, the offset and a quarter of the gaps.
// Subsequence: base plus the alignment score, clamped to [1, 499].
const (
	BaselineScore = 0.0

	scoreExact       = 1000
	scoreSubstring   = 800
	scoreWordPrefix  = 690
	scoreSubsequence = 200
	wordPrefixFloor  = 501
	subsequenceLimit = 499
	subtitleWeight   = 0.9
	keywordsWeight   = 0.8
)

// Alignment weights for the subsequence search.
const (
	baseBonus      = 2
	wordStartBonus = 8
	consecBonus    = 6
	startBonus     = 4
	gapPenalty     = 1
)

// Span is a half-open range of rune offsets [Start, End) within the matched field.
type Span struct {
	Start int
	End   int
}

// Match is the outcome of scoring one field or entry against a query.
type Match struct {
	Score     float64
	Tier      Tier
	Field     Field
	Positions []int // matched rune offsets, ascending
}

// Spans merges adjacent matched positions into ranges for highlighting.
func (m Match) Spans() []Span {
	if len(m.Positions) == 0 {
		return nil
	}
	spans := []Span{{Start: m.Positions[0], End: m.Positions[0] + 1}}
	for _, p := range m.Positions[1:] {
		last := &spans[len(spans)-1]
		if p == last.End {
			last.End++
			continue
		}
		spans = append(spans, Span{Start: p, End: p + 1})
	}
	return spans
}

// Score matches query against s, case-insensitively.
// An empty query matches with BaselineScore; otherwise ok is false unless every
// query rune appears in s in order.
func Score(query, s string) (Match, bool) {
	q := normalizeQuery(query)
	if len(q) == 0 {
		return Match{Score: BaselineScore, Tier: TierBrowse}, true
	}
	return scoreText(q, newText(s))
}

// MatchEntry scores the entry's title, falling back to the subtitle and then the
// keywords. Fallback matches are weighted below the same match on the title.
func MatchEntry(e *core.Entry, query string) (Match, bool) {
	return matchEntry(e, normalizeQuery(query))
}

func matchEntry(e *core.Entry, q []rune) (Match, bool) {
	if len(q) == 0 {
		return Match{Score: BaselineScore, Tier: TierBrowse}, true
	}
	fields := [...]struct {
		field  Field
		value  string
		weight float64
	}{
		{FieldTitle, e.Title, 1},
		{FieldSubtitle, e.Subtitle, subtitleWeight},
		{FieldKeywords, e.Keywords, keywordsWeight},
	}
	for _, f := range fields {
		if len(f.value) < len(q) {
			// byte length bounds rune length from above
			continue
		}
		m, ok := scoreText(q, newText(f.value))
		if !ok {
			continue
		}
		m.Field = f.field
		m.Score *= f.weight
		return m, true
	}
	return Match{}, false
}

func scoreText(q []rune, t text) (Match, bool) {
	if len(q) > len(t.lower) || !isSubsequence(q, t.lower) {
		return Match{}, false
	}

	if equalRunes(q, t.lower) {
		return Match{Score: scoreExact, Tier: TierExact, Positions: run(0, len(q))}, true
	}

	if offsets := indexRunes(t.lower, q); len(offsets) > 0 {
		best, bestAt := math.Inf(-1), 0
		for _, i := range offsets {
			s := float64(scoreSubstring - min(i, 40))
			switch {
			case i == 0:
				s += 60
			case t.starts[i]:
				s += 40
			}
			if s > best {
				best, bestAt = s, i
			}
		}
		return Match{Score: best, Tier: TierSubstring, Positions: run(bestAt, len(q))}, true
	}

	if pos, ok := align(q, t, true); ok {
		runs, gaps := shape(pos)
		s := scoreWordPrefix - 15*(runs-1) - min(pos[0], 30) - min(gaps, 100)/4
		return Match{Score: float64(max(s, wordPrefixFloor)), Tier: TierWordPrefix, Positions: pos}, true
	}

	pos, ok := align(q, t, false)
	if !ok {
		return Match{}, false
	}
	s := scoreSubsequence + alignmentScore(pos, t)
	s = min(max(s, 1), subsequenceLimit)
	return Match{Score: float64(s), Tier: TierSubsequence, Positions: pos}, true
}

const negInf = math.MinInt / 2

// align picks the positions for q in t that maximise the alignment score: bonuses
// for word starts and consecutive runes, a penalty per skipped rune between matches.
// In strict mode every rune must either start a word or directly follow the
// previous match.
func align(q []rune, t text, strict bool) ([]int, bool) {
	m, n := len(q), len(t.lower)
	score := make([]int, m*n)
	back := make([]int, m*n)

	for j := 0; j < n; j++ {
		score[j] = negInf
		if t.lower[j] != q[0] || (strict && !t.starts[j]) {
			continue
		}
		score[j] = bonus(t, j)
		if j == 0 {
			score[j] += startBonus
		}
	}

	for k := 1; k < m; k++ {
		prev, cur := score[(k-1)*n:k*n], score[k*n:(k+1)*n]
		bk := back[k*n : (k+1)*n]
		// best of prev[i] + gapPenalty*i over i <= j-2
		runBest, runAt := negInf, -1
		for j := 0; j < n; j++ {
			if j >= 2 && prev[j-2] > negInf {
				if v := prev[j-2] + gapPenalty*(j-2); v > runBest {
					runBest, runAt = v, j-2
				}
			}
			cur[j] = negInf
			if t.lower[j] != q[k] {
				continue
			}
			best, from := negInf, -1
			if j >= 1 && prev[j-1] > negInf {
				best, from = prev[j-1]+consecBonus, j-1
			}
			if runAt >= 0 && (!strict || t.starts[j]) {
				if v := runBest - gapPenalty*(j-1); v > best {
					best, from = v, runAt
				}
			}
			if from < 0 {
				continue
			}
			cur[j] = best + bonus(t, j)
			bk[j] = from
		}
	}

	last := score[(m-1)*n : m*n]
	end, endScore := -1, negInf
	for j, v := range last {
		if v > endScore {
			end, endScore = j, v
		}
	}
	if end < 0 {
		return nil, false
	}

	pos := make([]int, m)
	pos[m-1] = end
	for k := m - 1; k > 0; k-- {
		pos[k-1] = back[k*n+pos[k]]
	}
	return pos, true
}

func bonus(t text, j int) int {
	if t.starts[j] {
		return baseBonus + wordStartBonus
	}
	return baseBonus
}

// alignmentScore recomputes the score align maximised for the chosen positions.
func alignmentScore(pos []int, t text) int {
	s := 0
	for k, p := range pos {
		s += bonus(t, p)
		switch {
		case k == 0:
			if p == 0 {
				s += startBonus
			}
		case p == pos[k-1]+1:
			s += consecBonus
		default:
			s -= gapPenalty * (p - pos[k-1] - 1)
		}
	}
	return s
}

// shape counts contiguous runs and the total gap between them.
func shape(pos []int) (runs, gaps int) {
	runs = 1
	for k := 1; k < len(pos); k++ {
		if d := pos[k] - pos[k-1]; d > 1 {
			runs++
			gaps += d - 1
		}
	}
	return runs, gaps
}

func run(start, length int) []int {
	out := make([]int, length)
	for i := range out {
		out[i] = start + i
	}
	return out
}
