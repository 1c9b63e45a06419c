// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package launchpad wires the entry catalog, its cache, launch counts and search
// sessions into one launcher instance.
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/launchpad/catalog"
	"github.com/poiesic/launchpad/config"
	"github.com/poiesic/launchpad/core"
	"github.com/poiesic/launchpad/search"
	"github.com/poiesic/launchpad/source"
	"github.com/poiesic/launchpad/storage"
	"github.com/poiesic/launchpad/storage/badger"
	"github.com/poiesic/launchpad/storage/file"
)

// ErrUnknownEntry is returned when a launch names an entry that is not loaded.
var ErrUnknownEntry = errors.New("unknown entry")

// Launcher owns one catalog and everything hanging off it.
type Launcher struct {
	cfg       *config.Config
	backend   *badger.Backend
	snapshots storage.SnapshotRepository
	usage     storage.UsageRepository
	catalog   *catalog.Catalog
	ranker    *search.Ranker
	logger    *slog.Logger

	countsMu sync.RWMutex
	counts   map[string]uint64

	runMu     sync.Mutex
	runCancel context.CancelFunc
	runDone   chan struct{}
}

// Option configures a Launcher.
type Option func(*launcherOptions)

type launcherOptions struct {
	logger  *slog.Logger
	source  source.Source
	monitor search.RankMonitor
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *launcherOptions) {
		o.logger = logger
	}
}

// WithSource reads entries from src instead of the configured file.
func WithSource(src source.Source) Option {
	return func(o *launcherOptions) {
		o.source = src
	}
}

// WithRankMonitor observes every ranking done by the launcher's sessions.
func WithRankMonitor(monitor search.RankMonitor) Option {
	return func(o *launcherOptions) {
		o.monitor = monitor
	}
}

// New creates a Launcher from cfg. A nil cfg uses config.DefaultConfig().
// Nothing is loaded until Start.
func New(cfg *config.Config, opts ...Option) (*Launcher, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &launcherOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	src := options.source
	if src == nil {
		src = &source.FileSource{Path: cfg.Source, Kind: cfg.SourceFormat()}
	}

	l := &Launcher{
		cfg:    cfg,
		logger: options.logger,
		counts: make(map[string]uint64),
	}

	switch cfg.CacheBackend {
	case config.CacheBadger:
		backend, err := badger.OpenBackend(cfg.BadgerDir(), false)
		if err != nil {
			return nil, err
		}
		l.backend = backend
		l.snapshots = badger.NewSnapshotRepository(backend)
		l.usage = badger.NewUsageRepository(backend)
	case config.CacheFile:
		l.snapshots = file.NewSnapshotRepository(cfg.SnapshotPath())
		l.usage = storage.NewMemoryUsageRepository()
	default:
		l.snapshots = storage.NopSnapshotRepository{}
		l.usage = storage.NewMemoryUsageRepository()
	}

	cat, err := catalog.New(src, l.snapshots,
		catalog.WithPoolSize(cfg.PersistWorkers),
		catalog.WithPersistRetry(cfg.PersistRetries, cfg.PersistRetryDelay.Duration),
		catalog.WithLogger(l.logger),
	)
	if err != nil {
		l.closeStorage()
		return nil, err
	}
	l.catalog = cat

	rankerOpts := []search.RankerOption{
		search.WithMemoSize(cfg.ResultMemoSize),
		search.WithRankerLogger(l.logger),
	}
	if options.monitor != nil {
		rankerOpts = append(rankerOpts, search.WithMonitor(options.monitor))
	}
	if cfg.UsageBoost {
		rankerOpts = append(rankerOpts, search.WithBoost(l.boost))
	}
	ranker, err := search.NewRanker(rankerOpts...)
	if err != nil {
		_ = cat.Close()
		l.closeStorage()
		return nil, err
	}
	l.ranker = ranker
	return l, nil
}

// Start loads launch counts and the entry set, then serves reload requests in the
// background until Close. A source that cannot be read fails Start.
func (l *Launcher) Start(ctx context.Context) (*core.EntrySet, error) {
	counts, err := l.usage.Counts(ctx)
	if err != nil {
		l.logger.Warn("launch counts unavailable", "err", err)
	} else {
		l.countsMu.Lock()
		l.counts = counts
		l.countsMu.Unlock()
	}

	set, err := l.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	l.runMu.Lock()
	defer l.runMu.Unlock()
	if l.runCancel == nil {
		runCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		l.runCancel, l.runDone = cancel, done
		go func() {
			defer close(done)
			if err := l.catalog.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Warn("reload loop stopped", "err", err)
			}
		}()
	}
	return set, nil
}

// Config returns the validated configuration.
func (l *Launcher) Config() *config.Config {
	return l.cfg
}

// Catalog returns the underlying catalog.
func (l *Launcher) Catalog() *catalog.Catalog {
	return l.catalog
}

// Snapshots returns the cache repository.
func (l *Launcher) Snapshots() storage.SnapshotRepository {
	return l.snapshots
}

// Current returns the published entry set.
func (l *Launcher) Current() *core.EntrySet {
	return l.catalog.Current()
}

// NewSession opens a search session limited and debounced per the configuration.
// Later options override those settings.
func (l *Launcher) NewSession(opts ...search.SessionOption) (*search.Session, error) {
	all := []search.SessionOption{
		search.WithLimit(l.cfg.MaxResults),
		search.WithDebounce(l.cfg.QueryDebounce.Duration),
		search.WithSessionLogger(l.logger),
	}
	return search.NewSession(l.catalog, l.ranker, append(all, opts...)...)
}

// ForceReload parses the source again, bypassing the cache.
func (l *Launcher) ForceReload(ctx context.Context) (*core.EntrySet, error) {
	return l.catalog.ForceReload(ctx)
}

// RequestReload queues a forced reload for the background loop started by Start.
func (l *Launcher) RequestReload() bool {
	return l.catalog.RequestReload()
}

// RecordLaunch counts a launch of the entry with the given id and returns its new
// count. With usage boost enabled the entry ranks higher among equal matches.
func (l *Launcher) RecordLaunch(ctx context.Context, id string) (uint64, error) {
	if _, ok := l.catalog.Current().Lookup(id); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	n, err := l.usage.Increment(ctx, id)
	if err != nil {
		return 0, err
	}
	l.countsMu.Lock()
	l.counts[id] = n
	l.countsMu.Unlock()
	l.ranker.Invalidate()
	l.logger.Debug("recorded launch", "id", id, "count", n)
	return n, nil
}

// LaunchCount returns how often id was launched.
func (l *Launcher) LaunchCount(id string) uint64 {
	l.countsMu.RLock()
	defer l.countsMu.RUnlock()
	return l.counts[id]
}

// boost maps a launch count into [0, 1) so it never outweighs a declared priority step.
func (l *Launcher) boost(id string) float64 {
	n := l.LaunchCount(id)
	if n == 0 {
		return 0
	}
	return 1 - 1/(1+float64(n))
}

// Close stops the reload loop, waits for pending cache writes and closes storage.
func (l *Launcher) Close() error {
	l.runMu.Lock()
	if l.runCancel != nil {
		l.runCancel()
		<-l.runDone
		l.runCancel = nil
	}
	l.runMu.Unlock()

	if err := l.catalog.Close(); err != nil {
		l.logger.Error("error closing catalog", "err", err)
	}
	return l.closeStorage()
}

func (l *Launcher) closeStorage() error {
	var errs []error
	if err := l.usage.Close(); err != nil {
		l.logger.Error("error closing usage repository", "err", err)
		errs = append(errs, err)
	}
	if err := l.snapshots.Close(); err != nil {
		l.logger.Error("error closing snapshot repository", "err", err)
		errs = append(errs, err)
	}
	if l.backend != nil {
		if err := l.backend.RunValueLogGC(); err != nil {
			l.logger.Warn("value log GC failed", "err", err)
		}
		if err := l.backend.Close(); err != nil {
			l.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
