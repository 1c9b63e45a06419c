package search

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/launchpad/catalog"
	"github.com/poiesic/launchpad/core"
)

// Catalog is the part of *catalog.Catalog a session needs.
type Catalog interface {
	Current() *core.EntrySet
	Subscribe(fn func(catalog.Event)) (unsubscribe func())
}

// State is the session's position in its state machine.
type State int

const (
	// StateIdle shows browse results for an empty query.
	StateIdle State = iota
	// StateQuerying shows results for a non-empty query.
	StateQuerying
	// StateReloading serves the previous entry set while a reload is in flight.
	StateReloading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuerying:
		return "querying"
	case StateReloading:
		return "reloading"
	default:
		return "unknown"
	}
}

// Session is one user's query state over the shared entry set: the query text, the
// filter, the ranked results and a cursor into them.
//
// Every query, filter change and republish takes a new generation number. Work
// started under an older generation is cancelled and its results are dropped, so
// only the latest request is ever delivered.
type Session struct {
	id      string
	catalog Catalog
	ranker  *Ranker

	limit     int
	debounce  time.Duration
	onResults func(query string, results []Result)
	logger    *slog.Logger

	gen       atomic.Uint64
	deliverMu sync.Mutex // orders OnResults callbacks

	mu        sync.Mutex
	set       *core.EntrySet
	query     string
	filter    Filter
	results   []Result
	cursor    int
	reloading bool
	reloadErr error
	cancel    context.CancelFunc
	timer     *time.Timer
	closed    bool

	unsubscribe func()
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLimit caps the number of results. Zero means no cap.
func WithLimit(limit int) SessionOption {
	return func(s *Session) {
		s.limit = max(limit, 0)
	}
}

// WithDebounce delays SetQueryAsync until typing pauses for d.
// Default is zero, which runs each async query right away.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.debounce = d
	}
}

// WithOnResults sets a callback invoked with every delivered result list, including
// recomputes after a republish. Callbacks are never delivered out of order.
func WithOnResults(fn func(query string, results []Result)) SessionOption {
	return func(s *Session) {
		s.onResults = fn
	}
}

// WithSessionLogger sets a custom logger.
// Default is slog.Default().
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a session holding the catalog's current entry set and computes
// the browse results for it. The session follows later republishes until Close.
func NewSession(cat Catalog, ranker *Ranker, opts ...SessionOption) (*Session, error) {
	if cat == nil {
		return nil, ErrCatalogRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}
	s := &Session{
		id:      uuid.NewString(),
		catalog: cat,
		ranker:  ranker,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)

	s.mu.Lock()
	s.set = cat.Current()
	gen := s.nextGenLocked()
	s.mu.Unlock()

	s.unsubscribe = cat.Subscribe(s.handleEvent)
	if _, err := s.compute(context.Background(), gen, ""); err != nil && !errors.Is(err, ErrStaleQuery) {
		s.unsubscribe()
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// SetQuery ranks the held entry set for text and makes the result current.
// The cursor moves to the first result. It returns ErrStaleQuery when a newer
// request superseded this one before it finished.
func (s *Session) SetQuery(ctx context.Context, text string) ([]Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.query = text
	gen := s.nextGenLocked()
	s.mu.Unlock()
	return s.compute(ctx, gen, "")
}

// SetQueryAsync records text and ranks it in the background after the debounce
// interval. Results are delivered through the OnResults callback and Results.
func (s *Session) SetQueryAsync(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.query = text
	gen := s.nextGenLocked()
	run := func() {
		if _, err := s.compute(context.Background(), gen, ""); err != nil && !errors.Is(err, ErrStaleQuery) {
			s.logger.Warn("async query failed", "query", text, "err", err)
		}
	}
	if s.debounce <= 0 {
		go run()
		return
	}
	s.timer = time.AfterFunc(s.debounce, run)
}

// ClearQuery returns the session to browse mode.
func (s *Session) ClearQuery(ctx context.Context) ([]Result, error) {
	return s.SetQuery(ctx, "")
}

// SetFilter replaces the structural filter and recomputes the current query.
func (s *Session) SetFilter(ctx context.Context, filter Filter) ([]Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.filter = filter
	gen := s.nextGenLocked()
	s.mu.Unlock()
	return s.compute(ctx, gen, "")
}

// Query returns the current query text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Results returns the most recently delivered result list.
func (s *Session) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results)
}

// Cursor returns the selected index, 0 when there are no results.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// MoveCursor moves the selection by delta, clamped to the result list.
func (s *Session) MoveCursor(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		s.cursor = 0
		return 0
	}
	s.cursor = min(max(s.cursor+delta, 0), len(s.results)-1)
	return s.cursor
}

// Selected returns the result under the cursor.
func (s *Session) Selected() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < len(s.results) {
		return s.results[s.cursor], true
	}
	return Result{}, false
}

// State reports where the session is in its state machine.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.reloading:
		return StateReloading
	case strings.TrimSpace(s.query) != "":
		return StateQuerying
	default:
		return StateIdle
	}
}

// ReloadError returns the error of the latest failed reload, or nil once a reload
// succeeds. While it is set the session keeps showing the previously loaded entries.
func (s *Session) ReloadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadErr
}

// EntrySet returns the entry set the session currently ranks against.
func (s *Session) EntrySet() *core.EntrySet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Close stops following the catalog and abandons pending work.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.nextGenLocked()
	s.mu.Unlock()
	s.unsubscribe()
	return nil
}

// nextGenLocked starts a new generation, cancelling in-flight and pending work.
func (s *Session) nextGenLocked() uint64 {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.gen.Add(1)
}

// compute ranks the held set under generation gen. keepID, when still present in
// the new results, keeps the cursor on that entry.
func (s *Session) compute(parent context.Context, gen uint64, keepID string) ([]Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.gen.Load() != gen {
		s.mu.Unlock()
		return nil, ErrStaleQuery
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	set, query, filter := s.set, s.query, s.filter
	s.mu.Unlock()
	defer cancel()

	results, err := s.ranker.Rank(ctx, set, query, filter, s.limit)

	s.mu.Lock()
	if s.gen.Load() != gen || s.closed {
		s.mu.Unlock()
		s.logger.Debug("discarded stale query", "query", query)
		return nil, ErrStaleQuery
	}
	s.cancel = nil
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.results = results
	s.cursor = cursorFor(results, keepID)
	s.mu.Unlock()

	s.deliver(gen, query, results)
	return slices.Clone(results), nil
}

func (s *Session) deliver(gen uint64, query string, results []Result) {
	if s.onResults == nil {
		return
	}
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.gen.Load() != gen {
		return
	}
	s.onResults(query, slices.Clone(results))
}

func cursorFor(results []Result, id string) int {
	if id == "" {
		return 0
	}
	if i := slices.IndexFunc(results, func(r Result) bool { return r.ID == id }); i >= 0 {
		return i
	}
	return 0
}

// handleEvent runs on the catalog's reload goroutine.
func (s *Session) handleEvent(ev catalog.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	switch ev.Kind {
	case catalog.EventReloadStarted:
		s.reloading = true
		s.mu.Unlock()
	case catalog.EventUnchanged:
		s.reloading = false
		s.reloadErr = nil
		s.mu.Unlock()
	case catalog.EventReloadFailed:
		s.reloading = false
		s.reloadErr = ev.Err
		s.mu.Unlock()
		s.logger.Warn("reload failed, keeping previous entries", "err", ev.Err)
	case catalog.EventPublished:
		s.reloading = false
		s.reloadErr = nil
		if ev.Set == s.set {
			s.mu.Unlock()
			return
		}
		s.set = ev.Set
		var keepID string
		if s.cursor < len(s.results) {
			keepID = s.results[s.cursor].ID
		}
		gen := s.nextGenLocked()
		s.mu.Unlock()
		if _, err := s.compute(context.Background(), gen, keepID); err != nil && !errors.Is(err, ErrStaleQuery) {
			s.logger.Warn("recompute after republish failed", "err", err)
		}
	default:
		s.mu.Unlock()
	}
}
