package search

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/poiesic/launchpad/core"
)

// checkEvery is how many candidates are scored between cancellation checks.
const checkEvery = 64

// Result is one ranked entry with everything needed to render it.
type Result struct {
	ID       string
	Title    string
	Subtitle string
	Category string
	Tags     []string
	Icon     string
	Action   core.Action
	Score    float64
	Tier     Tier
	Field    Field   // field the spans refer to
	Spans    []Span  // highlighted rune ranges within Field
	Index    int     // position in the entry set
	Priority float64 // effective priority used for tie-breaks
}

type memoKey struct {
	fingerprint string
	version     uint64
	epoch       uint64
	query       string
	filter      string
	limit       int
}

// Ranker runs the filter, score, sort and cap pipeline over an entry set.
// It is safe for concurrent use; sessions share one Ranker.
type Ranker struct {
	memo    *lru.Cache[memoKey, []Result]
	monitor RankMonitor
	boost   func(id string) float64
	logger  *slog.Logger

	// epoch is bumped by Invalidate. A ranking memoises under the epoch it started
	// in, so one that overlaps Invalidate cannot repopulate the memo with stale results.
	epoch atomic.Uint64
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker) error

// WithMemoSize keeps the results of the last size distinct queries per entry set
// version. Zero disables the memo. Default is 256.
func WithMemoSize(size int) RankerOption {
	return func(r *Ranker) error {
		if size <= 0 {
			r.memo = nil
			return nil
		}
		memo, err := lru.New[memoKey, []Result](size)
		if err != nil {
			return err
		}
		r.memo = memo
		return nil
	}
}

// WithMonitor sets hooks that observe every ranking.
func WithMonitor(monitor RankMonitor) RankerOption {
	return func(r *Ranker) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// WithBoost adds fn(id) to each entry's priority before tie-breaking. fn should
// return values in [0, 1) so declared priorities keep precedence.
func WithBoost(fn func(id string) float64) RankerOption {
	return func(r *Ranker) error {
		r.boost = fn
		return nil
	}
}

// WithRankerLogger sets a custom logger.
// Default is slog.Default().
func WithRankerLogger(logger *slog.Logger) RankerOption {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a Ranker.
func NewRanker(opts ...RankerOption) (*Ranker, error) {
	memo, err := lru.New[memoKey, []Result](256)
	if err != nil {
		return nil, err
	}
	r := &Ranker{
		memo:    memo,
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Invalidate drops memoised results, e.g. after launch counts changed.
func (r *Ranker) Invalidate() {
	r.epoch.Add(1)
	if r.memo != nil {
		r.memo.Purge()
	}
}

// Rank returns the entries of set matching query and filter, best first.
//
// Disabled entries and entries failing the filter are dropped, the rest are scored,
// non-matches are dropped (an empty query keeps everything), and the survivors are
// sorted by score, then priority and title, then set position. A positive limit
// caps the sorted list. An empty query keeps set order within equal priority.
//
// Rank checks ctx while scoring and returns ctx.Err() once it is done.
func (r *Ranker) Rank(ctx context.Context, set *core.EntrySet, query string, filter Filter, limit int) ([]Result, error) {
	start := time.Now()
	epoch := r.epoch.Load()
	r.monitor.Start(query)
	if set == nil {
		r.monitor.Finish(nil)
		return nil, nil
	}

	q := normalizeQuery(query)
	key, memoable := r.memoKey(set, epoch, q, filter, limit)
	if memoable {
		if cached, ok := r.memo.Get(key); ok {
			r.monitor.MemoHit(query)
			r.monitor.Finish(cached)
			return slices.Clone(cached), nil
		}
	}

	candidates := make([]int, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		if filter.Allows(set.At(i)) {
			candidates = append(candidates, i)
		}
	}
	r.monitor.AfterFilter(len(candidates))

	results := make([]Result, 0, len(candidates))
	for n, i := range candidates {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		e := set.At(i)
		m, ok := matchEntry(e, q)
		if !ok {
			continue
		}
		results = append(results, r.result(e, i, m))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.monitor.AfterScore(len(results))

	if len(q) == 0 {
		slices.SortStableFunc(results, compareBrowse)
	} else {
		slices.SortStableFunc(results, compareRanked)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if memoable {
		r.memo.Add(key, slices.Clone(results))
	}
	r.logger.Debug("ranked entries", "query", query, "version", set.Version,
		"candidates", len(candidates), "results", len(results), "elapsed", time.Since(start))
	r.monitor.Finish(results)
	return results, nil
}

func (r *Ranker) memoKey(set *core.EntrySet, epoch uint64, q []rune, filter Filter, limit int) (memoKey, bool) {
	if r.memo == nil {
		return memoKey{}, false
	}
	fk, ok := filter.key()
	if !ok {
		return memoKey{}, false
	}
	return memoKey{
		fingerprint: set.Fingerprint,
		version:     set.Version,
		epoch:       epoch,
		query:       string(q),
		filter:      fk,
		limit:       limit,
	}, true
}

func (r *Ranker) result(e *core.Entry, index int, m Match) Result {
	priority := e.Priority
	if r.boost != nil {
		priority += r.boost(e.ID)
	}
	return Result{
		ID:       e.ID,
		Title:    e.Title,
		Subtitle: e.Subtitle,
		Category: e.Category,
		Tags:     e.Tags,
		Icon:     e.Icon,
		Action:   e.Action,
		Score:    m.Score,
		Tier:     m.Tier,
		Field:    m.Field,
		Spans:    m.Spans(),
		Index:    index,
		Priority: priority,
	}
}

func compareRanked(a, b Result) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := core.CompareOrderKey(a.Priority, a.Title, b.Priority, b.Title); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

func compareBrowse(a, b Result) int {
	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// String renders a result with its highlighted spans in brackets, for logs and the CLI.
func (r Result) String() string {
	if r.Field != FieldTitle {
		return r.Title
	}
	return Highlight(r.Title, r.Spans, "[", "]") + " (" + strconv.FormatFloat(r.Score, 'f', 0, 64) + ")"
}

// Highlight wraps each span of s in open and close markers.
func Highlight(s string, spans []Span, open, end string) string {
	if len(spans) == 0 {
		return s
	}
	runes := []rune(s)
	out := make([]rune, 0, len(runes)+len(spans)*(len(open)+len(end)))
	next := 0
	for _, sp := range spans {
		if sp.Start < next || sp.End > len(runes) {
			continue
		}
		out = append(out, runes[next:sp.Start]...)
		out = append(out, []rune(open)...)
		out = append(out, runes[sp.Start:sp.End]...)
		out = append(out, []rune(end)...)
		next = sp.End
	}
	out = append(out, runes[next:]...)
	return string(out)
}
