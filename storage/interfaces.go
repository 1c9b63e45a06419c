package storage

import (
	"context"

	"github.com/poiesic/launchpad/core"
)

// SnapshotRepository persists entry set snapshots keyed by source fingerprint.
// Implementations must be thread-safe.
type SnapshotRepository interface {
	// Load returns the stored entry set when its fingerprint and schema version match.
	// Any other outcome, including corruption, is a miss and returns false.
	Load(ctx context.Context, fingerprint string) (*core.EntrySet, bool)

	// Store replaces the stored snapshot with set. Failure leaves the in-memory
	// set usable; callers only report the error.
	Store(ctx context.Context, set *core.EntrySet) error

	// Close releases resources held by the repository.
	Close() error
}

// SnapshotInspector is implemented by repositories that can describe what they hold
// without a fingerprint to compare against.
type SnapshotInspector interface {
	// Inspect returns the stored snapshot and its encoded size.
	// Returns ErrNotFound when nothing is stored.
	Inspect(ctx context.Context) (*core.EntrySet, int, error)

	// Clear removes the stored snapshot.
	Clear(ctx context.Context) error
}

// UsageRepository counts launches per entry identifier.
type UsageRepository interface {
	// Increment adds one launch for id and returns the new count.
	Increment(ctx context.Context, id string) (uint64, error)

	// Counts returns the launch count of every identifier seen so far.
	Counts(ctx context.Context) (map[string]uint64, error)

	// Close releases resources held by the repository.
	Close() error
}
