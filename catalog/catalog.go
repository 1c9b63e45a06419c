package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"

	"github.com/poiesic/launchpad/core"
	"github.com/poiesic/launchpad/source"
	"github.com/poiesic/launchpad/storage"
)

const reloadKey = "reload"

// Catalog loads, caches and publishes the authoritative entry set.
type Catalog struct {
	source  source.Source
	cache   storage.SnapshotRepository
	current atomic.Pointer[core.EntrySet]
	flight  singleflight.Group

	persistPool    *ants.Pool
	persistWG      sync.WaitGroup
	persistMu      sync.Mutex // serialises cache writes
	persisted      uint64     // highest version written, guarded by persistMu
	persistRetries int
	persistDelay   time.Duration

	requests chan struct{}

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSub     int

	lastErr atomic.Pointer[reloadError]
	closed  atomic.Bool
	logger  *slog.Logger
}

type reloadError struct{ err error }

// Option configures a Catalog.
type Option func(*Catalog) error

// WithPoolSize sets the worker pool size for background cache writes.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Catalog) error {
		if size < 1 {
			size = 1
		}
		if c.persistPool != nil {
			c.persistPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.persistPool = pool
		return nil
	}
}

// WithPersistRetry sets how often a failed cache write is retried and the base
// backoff between attempts. Default is 3 attempts starting at 100ms.
func WithPersistRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Catalog) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.persistRetries = attempts
		c.persistDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a Catalog reading from src. A nil cache disables caching.
func New(src source.Source, cache storage.SnapshotRepository, opts ...Option) (*Catalog, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if cache == nil {
		cache = storage.NopSnapshotRepository{}
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		source:         src,
		cache:          cache,
		persistPool:    pool,
		persistRetries: 3,
		persistDelay:   100 * time.Millisecond,
		requests:       make(chan struct{}, 1),
		subscribers:    make(map[int]func(Event)),
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.persistPool.Release()
			return nil, optErr
		}
	}
	return c, nil
}

// Current returns the published entry set, or nil before the first successful load.
func (c *Catalog) Current() *core.EntrySet {
	return c.current.Load()
}

// LastError returns the error of the most recent reload, or nil if it succeeded.
func (c *Catalog) LastError() error {
	if e := c.lastErr.Load(); e != nil {
		return e.err
	}
	return nil
}

// Load makes the entry set for the current source content available, using the
// cached snapshot when its fingerprint matches.
func (c *Catalog) Load(ctx context.Context) (*core.EntrySet, error) {
	return c.do(ctx, false)
}

// ForceReload parses the source again, bypassing the cache.
func (c *Catalog) ForceReload(ctx context.Context) (*core.EntrySet, error) {
	return c.do(ctx, true)
}

func (c *Catalog) do(ctx context.Context, force bool) (*core.EntrySet, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	// the shared reload must not die with whichever caller happened to start it
	shared := context.WithoutCancel(ctx)
	v, err, joined := c.flight.Do(reloadKey, func() (any, error) {
		return c.reload(shared, force)
	})
	if joined {
		c.logger.Debug("joined in-flight reload", "force", force)
	}
	if err != nil {
		return nil, err
	}
	return v.(*core.EntrySet), nil
}

func (c *Catalog) reload(ctx context.Context, force bool) (*core.EntrySet, error) {
	start := time.Now()
	prev := c.current.Load()
	c.emit(Event{Kind: EventReloadStarted, Set: prev})

	raw, fp, err := source.Read(ctx, c.source)
	if err != nil {
		return nil, c.fail(prev, err)
	}

	if !force {
		if prev != nil && prev.Fingerprint == fp {
			c.lastErr.Store(nil)
			c.emit(Event{Kind: EventUnchanged, Set: prev})
			return prev, nil
		}
		if cached, ok := c.cache.Load(ctx, fp); ok {
			if prev != nil && cached.Version <= prev.Version {
				cached = cached.WithVersion(prev.Version + 1)
			}
			c.publish(cached, start)
			return cached, nil
		}
	}

	res, err := source.LoadRaw(c.source, raw, c.logger)
	if err != nil {
		return nil, c.fail(prev, err)
	}
	set := core.NewEntrySet(nextVersion(prev), fp, res.Entries, res.Diagnostics)
	c.publish(set, start)
	c.persistAsync(set)
	return set, nil
}

func nextVersion(prev *core.EntrySet) uint64 {
	if prev == nil {
		return 1
	}
	return prev.Version + 1
}

func (c *Catalog) publish(set *core.EntrySet, start time.Time) {
	c.current.Store(set)
	c.lastErr.Store(nil)
	c.logger.Info("published entry set",
		"source", c.source.Name(),
		"version", set.Version,
		"entries", set.Len(),
		"dropped", len(set.Diagnostics()),
		"fromCache", set.FromCache,
		"elapsed", time.Since(start))
	c.emit(Event{Kind: EventPublished, Set: set})
}

func (c *Catalog) fail(prev *core.EntrySet, err error) error {
	c.lastErr.Store(&reloadError{err: err})
	attrs := []any{"source", c.source.Name(), "err", err}
	if prev != nil {
		attrs = append(attrs, "keeping", prev.Version)
	}
	c.logger.Error("reload failed", attrs...)
	c.emit(Event{Kind: EventReloadFailed, Set: prev, Err: err})
	return err
}

// persistAsync writes set to the cache off the critical path. Writes are serialised
// and a write older than the last one stored is skipped.
func (c *Catalog) persistAsync(set *core.EntrySet) {
	c.persistWG.Add(1)
	err := c.persistPool.Submit(func() {
		defer c.persistWG.Done()
		if err := c.persist(set); err != nil {
			c.logger.Warn("cache persist failed", "version", set.Version, "err", err)
		}
	})
	if err != nil {
		c.persistWG.Done()
		c.logger.Warn("cache persist not scheduled", "version", set.Version, "err", err)
	}
}

func (c *Catalog) persist(set *core.EntrySet) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if set.Version <= c.persisted {
		return nil
	}
	if err := c.storeWithBackoff(set); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	c.persisted = set.Version
	return nil
}

// storeWithBackoff tries the cache write up to persistRetries times, doubling the
// delay after each failure. It returns the last error.
func (c *Catalog) storeWithBackoff(set *core.EntrySet) error {
	delay := c.persistDelay
	for attempt := 1; ; attempt++ {
		err := c.cache.Store(context.Background(), set)
		if err == nil {
			if attempt > 1 {
				c.logger.Debug("cache persist succeeded after retry", "version", set.Version, "attempt", attempt)
			}
			return nil
		}
		c.logger.Debug("cache persist attempt failed", "version", set.Version,
			"attempt", attempt, "maxAttempts", c.persistRetries, "err", err)
		if attempt >= c.persistRetries {
			return err
		}
		time.Sleep(delay)
		delay *= 2
	}
}

// Flush waits for background cache writes scheduled so far.
func (c *Catalog) Flush() {
	c.persistWG.Wait()
}

// Close waits for pending cache writes and releases the worker pool.
// The cache repository is owned by the caller and left open.
func (c *Catalog) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.Flush()
	c.persistPool.Release()
	return nil
}
