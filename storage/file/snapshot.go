// Package file stores the entry set snapshot in a single binary file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/poiesic/launchpad/core"
	"github.com/poiesic/launchpad/storage"
)

// SnapshotRepository implements storage.SnapshotRepository on top of one file.
// Writes go to a temporary file in the same directory and are renamed into place,
// so a reader never sees a partially written snapshot.
type SnapshotRepository struct {
	path   string
	logger *slog.Logger
}

var (
	_ storage.SnapshotRepository = (*SnapshotRepository)(nil)
	_ storage.SnapshotInspector  = (*SnapshotRepository)(nil)
)

// NewSnapshotRepository creates a repository backed by path. The file and its
// directory are created on the first Store.
func NewSnapshotRepository(path string) *SnapshotRepository {
	return &SnapshotRepository{
		path:   path,
		logger: slog.Default().With("cache", path),
	}
}

// Path returns the snapshot file location.
func (r *SnapshotRepository) Path() string {
	return r.path
}

func (r *SnapshotRepository) Load(ctx context.Context, fingerprint string) (*core.EntrySet, bool) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("error reading cache file", "err", err)
		}
		return storage.DecodeForFingerprint(nil, fingerprint, r.logger)
	}
	return storage.DecodeForFingerprint(data, fingerprint, r.logger)
}

func (r *SnapshotRepository) Store(ctx context.Context, set *core.EntrySet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := storage.MarshalSnapshot(set)

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("cannot create cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot replace cache file: %w", err)
	}
	r.logger.Debug("wrote cache file", "version", set.Version, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func (r *SnapshotRepository) Inspect(ctx context.Context) (*core.EntrySet, int, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, storage.ErrNotFound
		}
		return nil, 0, err
	}
	set, err := storage.UnmarshalSnapshot(data)
	return set, len(data), err
}

func (r *SnapshotRepository) Clear(ctx context.Context) error {
	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (r *SnapshotRepository) Close() error {
	return nil
}
