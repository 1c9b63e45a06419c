package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/launchpad/core"
)

// MemorySnapshotRepository keeps the encoded snapshot in memory. It goes through the
// same encoding as the persistent backends, so it is a faithful stand-in for tests.
type MemorySnapshotRepository struct {
	mu     sync.RWMutex
	data   []byte
	logger *slog.Logger
}

var (
	_ SnapshotRepository = (*MemorySnapshotRepository)(nil)
	_ SnapshotInspector  = (*MemorySnapshotRepository)(nil)
)

// NewMemorySnapshotRepository creates an empty in-memory repository.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{logger: slog.Default()}
}

func (r *MemorySnapshotRepository) Load(_ context.Context, fingerprint string) (*core.EntrySet, bool) {
	r.mu.RLock()
	data := r.data
	r.mu.RUnlock()
	return DecodeForFingerprint(data, fingerprint, r.logger)
}

func (r *MemorySnapshotRepository) Store(_ context.Context, set *core.EntrySet) error {
	data := MarshalSnapshot(set)
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

func (r *MemorySnapshotRepository) Inspect(_ context.Context) (*core.EntrySet, int, error) {
	r.mu.RLock()
	data := r.data
	r.mu.RUnlock()
	if data == nil {
		return nil, 0, ErrNotFound
	}
	set, err := UnmarshalSnapshot(data)
	return set, len(data), err
}

func (r *MemorySnapshotRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	r.data = nil
	r.mu.Unlock()
	return nil
}

// Raw returns the stored bytes.
func (r *MemorySnapshotRepository) Raw() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// SetRaw replaces the stored bytes verbatim.
func (r *MemorySnapshotRepository) SetRaw(data []byte) {
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
}

func (r *MemorySnapshotRepository) Close() error {
	return nil
}

// NopSnapshotRepository never holds a snapshot. Used when caching is disabled.
type NopSnapshotRepository struct{}

var _ SnapshotRepository = NopSnapshotRepository{}

func (NopSnapshotRepository) Load(context.Context, string) (*core.EntrySet, bool) { return nil, false }
func (NopSnapshotRepository) Store(context.Context, *core.EntrySet) error        { return nil }
func (NopSnapshotRepository) Close() error                                       { return nil }

// MemoryUsageRepository counts launches in memory.
type MemoryUsageRepository struct {
	mu     sync.Mutex
	counts map[string]uint64
}

var _ UsageRepository = (*MemoryUsageRepository)(nil)

// NewMemoryUsageRepository creates an empty counter.
func NewMemoryUsageRepository() *MemoryUsageRepository {
	return &MemoryUsageRepository{counts: make(map[string]uint64)}
}

func (r *MemoryUsageRepository) Increment(_ context.Context, id string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[id]++
	return r.counts[id], nil
}

func (r *MemoryUsageRepository) Counts(_ context.Context) (map[string]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out, nil
}

func (r *MemoryUsageRepository) Close() error {
	return nil
}

// DecodeForFingerprint decodes data and accepts it only when it was taken from
// content with the given fingerprint. Rejections are logged at debug level.
func DecodeForFingerprint(data []byte, fingerprint string, logger *slog.Logger) (*core.EntrySet, bool) {
	if data == nil {
		logger.Debug("cache miss", "reason", ErrNotFound)
		return nil, false
	}
	set, err := UnmarshalSnapshot(data)
	if err != nil {
		logger.Debug("cache miss", "reason", err)
		return nil, false
	}
	if set.Fingerprint != fingerprint {
		logger.Debug("cache miss", "reason", ErrFingerprintMismatch,
			"stored", shortFingerprint(set.Fingerprint), "wanted", shortFingerprint(fingerprint))
		return nil, false
	}
	return set, true
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
