package file

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/launchpad/core"
	"github.com/poiesic/launchpad/storage"
)

func sampleSet(version uint64, src string) *core.EntrySet {
	return core.NewEntrySet(version, core.Fingerprint([]byte(src)), []core.Entry{
		{ID: "calc", Title: "Calculator", Category: "utilities", Enabled: true},
		{ID: "cal2", Title: "Calendar", Category: "office", Enabled: true},
	}, nil)
}

func TestSnapshotRepository_StoreLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "entries.bin")
	repo := NewSnapshotRepository(path)
	set := sampleSet(3, "source")

	_, ok := repo.Load(ctx, set.Fingerprint)
	assert.False(t, ok, "missing file must miss")

	require.NoError(t, repo.Store(ctx, set))
	assert.FileExists(t, path)

	got, ok := repo.Load(ctx, set.Fingerprint)
	require.True(t, ok)
	assert.Equal(t, set.Entries(), got.Entries())
	assert.Equal(t, uint64(3), got.Version)

	_, ok = repo.Load(ctx, core.Fingerprint([]byte("source!")))
	assert.False(t, ok, "stale fingerprint must miss")

	// no temp files left behind
	files, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSnapshotRepository_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.bin")
	repo := NewSnapshotRepository(path)
	set := sampleSet(1, "source")
	require.NoError(t, repo.Store(ctx, set))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty file", nil},
		{"truncated", data[:len(data)/2]},
		{"random bytes", []byte("this is definitely not a snapshot file")},
		{"flipped byte", func() []byte {
			b := append([]byte(nil), data...)
			b[len(b)/2] ^= 0x20
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))
			_, ok := repo.Load(ctx, set.Fingerprint)
			assert.False(t, ok)
		})
	}
}

func TestSnapshotRepository_StoreFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission checks need a non-root unix user")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	repo := NewSnapshotRepository(filepath.Join(dir, "entries.bin"))
	assert.Error(t, repo.Store(context.Background(), sampleSet(1, "x")))
}

func TestSnapshotRepository_InspectClear(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(filepath.Join(t.TempDir(), "entries.bin"))

	_, _, err := repo.Inspect(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, repo.Clear(ctx), "clearing a missing file is fine")

	set := sampleSet(9, "inspect")
	require.NoError(t, repo.Store(ctx, set))

	got, size, err := repo.Inspect(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.Version)
	assert.Positive(t, size)

	require.NoError(t, repo.Clear(ctx))
	assert.NoFileExists(t, repo.Path())
}
