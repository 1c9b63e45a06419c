package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/launchpad/storage"
)

const maxConflictRetries = 5

// UsageRepository implements storage.UsageRepository for BadgerDB.
type UsageRepository struct {
	backend *Backend
	mu      sync.Mutex // serialises increments from this process
}

var _ storage.UsageRepository = (*UsageRepository)(nil)

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(backend *Backend) *UsageRepository {
	return &UsageRepository{backend: backend}
}

// Increment adds one launch for id. Conflicts with other writers are retried.
func (r *UsageRepository) Increment(ctx context.Context, id string) (uint64, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := makeUsageKey(id)
	var count uint64
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			return 0, err
		}
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			count = 0
			item, err := tx.Get(key)
			switch {
			case err == nil:
				if err := item.Value(func(val []byte) error {
					if len(val) != 8 {
						return storage.ErrTruncatedData
					}
					count = binary.BigEndian.Uint64(val)
					return nil
				}); err != nil {
					return err
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			count++
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, count)
			if err := tx.Set(key, buf); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Counts returns the launch count of every identifier.
func (r *UsageRepository) Counts(ctx context.Context) (map[string]uint64, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	counts := make(map[string]uint64)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(usagePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			id := usageIDFromKey(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				if len(val) != 8 {
					return storage.ErrTruncatedData
				}
				counts[id] = binary.BigEndian.Uint64(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *UsageRepository) Close() error {
	return nil
}
