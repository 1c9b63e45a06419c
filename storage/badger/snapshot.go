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

package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/launchpad/core"
	"github.com/poiesic/launchpad/storage"
)

// SnapshotRepository implements storage.SnapshotRepository for BadgerDB.
type SnapshotRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var (
	_ storage.SnapshotRepository = (*SnapshotRepository)(nil)
	_ storage.SnapshotInspector  = (*SnapshotRepository)(nil)
)

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(backend *Backend) *SnapshotRepository {
	return &SnapshotRepository{
		backend: backend,
		logger:  backend.logger,
	}
}

// Load retrieves the snapshot taken from content with the given fingerprint.
func (r *SnapshotRepository) Load(ctx context.Context, fingerprint string) (*core.EntrySet, bool) {
	data, err := r.read()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("error reading snapshot", "err", err)
		}
		return storage.DecodeForFingerprint(nil, fingerprint, r.logger)
	}
	return storage.DecodeForFingerprint(data, fingerprint, r.logger)
}

// Store persists set as the current snapshot.
func (r *SnapshotRepository) Store(ctx context.Context, set *core.EntrySet) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	value := storage.MarshalSnapshot(set)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(snapshotKey), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Inspect returns the stored snapshot without fingerprint checks.
func (r *SnapshotRepository) Inspect(ctx context.Context) (*core.EntrySet, int, error) {
	data, err := r.read()
	if err != nil {
		return nil, 0, err
	}
	set, err := storage.UnmarshalSnapshot(data)
	return set, len(data), err
}

// Clear deletes the stored snapshot.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete([]byte(snapshotKey)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close is a no-op; the backend is closed by its owner.
func (r *SnapshotRepository) Close() error {
	return nil
}

func (r *SnapshotRepository) read() ([]byte, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var data []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(snapshotKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	return data, err
}
