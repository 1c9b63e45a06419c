package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/launchpad/core"
)

func testSet() *core.EntrySet {
	entries := []core.Entry{
		{ID: "calc", Title: "Calculator", Category: "utilities", Tags: []string{"math"}, Enabled: true, Priority: 1},
		{ID: "cal2", Title: "Calendar", Subtitle: "Dates", Category: core.DefaultCategory, Enabled: false,
			Action: core.Action{Kind: "exec", Payload: `"gnome-calendar"`}},
	}
	diags := []core.Diagnostic{
		{Index: 2, Line: 9, ID: "broken", Field: "title", Err: core.ErrMissingField},
		{Index: 3, ID: "odd", Field: "priority",
			Err: fmt.Errorf("%w: %w: priority must be number, got string", core.ErrInvalidEntry, core.ErrWrongType)},
	}
	return core.NewEntrySet(7, core.Fingerprint([]byte("source")), entries, diags)
}

func TestMarshalUnmarshalSnapshot(t *testing.T) {
	in := testSet()
	data := MarshalSnapshot(in)

	out, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.True(t, out.FromCache)
	assert.Equal(t, in.Version, out.Version)
	assert.Equal(t, in.Fingerprint, out.Fingerprint)
	assert.True(t, in.LoadedAt.Equal(out.LoadedAt))
	assert.Equal(t, in.Entries(), out.Entries())

	require.Len(t, out.Diagnostics(), 2)
	d := out.Diagnostics()[0]
	assert.Equal(t, "broken", d.ID)
	assert.Equal(t, 9, d.Line)
	assert.EqualError(t, d.Err, core.ErrMissingField.Error())
	assert.ErrorIs(t, d, core.ErrMissingField)

	wrapped := out.Diagnostics()[1]
	assert.Equal(t, in.Diagnostics()[1].Error(), wrapped.Error())
	assert.ErrorIs(t, wrapped, core.ErrInvalidEntry)
	assert.ErrorIs(t, wrapped, core.ErrWrongType)
	assert.False(t, errors.Is(wrapped, core.ErrMissingField))

	_, ok := out.Lookup("cal2")
	assert.True(t, ok)
}

func TestMarshalSnapshot_Empty(t *testing.T) {
	in := core.NewEntrySet(1, core.Fingerprint(nil), nil, nil)
	out, err := UnmarshalSnapshot(MarshalSnapshot(in))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Empty(t, out.Diagnostics())
}

func TestUnmarshalSnapshot_Corruption(t *testing.T) {
	good := MarshalSnapshot(testSet())

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name:    "empty",
			mutate:  func([]byte) []byte { return nil },
			wantErr: ErrTruncatedData,
		},
		{
			name:    "short",
			mutate:  func(b []byte) []byte { return b[:5] },
			wantErr: ErrTruncatedData,
		},
		{
			name: "bad magic",
			mutate: func(b []byte) []byte {
				b[0] = 'X'
				return b
			},
			wantErr: ErrCorruptSnapshot,
		},
		{
			name: "other schema version",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint16(b[8:], core.SchemaVersion+1)
				return b
			},
			wantErr: ErrSchemaMismatch,
		},
		{
			name: "flipped payload byte",
			mutate: func(b []byte) []byte {
				b[headerSize+3] ^= 0xff
				return b
			},
			wantErr: ErrChecksumMismatch,
		},
		{
			name:    "truncated payload",
			mutate:  func(b []byte) []byte { return b[:len(b)-12] },
			wantErr: ErrChecksumMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), good...))
			_, err := UnmarshalSnapshot(data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMemorySnapshotRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySnapshotRepository()
	set := testSet()

	_, ok := repo.Load(ctx, set.Fingerprint)
	assert.False(t, ok, "empty repository must miss")

	require.NoError(t, repo.Store(ctx, set))

	got, ok := repo.Load(ctx, set.Fingerprint)
	require.True(t, ok)
	assert.Equal(t, set.Entries(), got.Entries())

	_, ok = repo.Load(ctx, core.Fingerprint([]byte("other source")))
	assert.False(t, ok, "fingerprint mismatch must miss")

	repo.SetRaw([]byte("garbage that is long enough to have a header"))
	_, ok = repo.Load(ctx, set.Fingerprint)
	assert.False(t, ok, "corrupt snapshot must miss")

	require.NoError(t, repo.Clear(ctx))
	_, _, err := repo.Inspect(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUsageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUsageRepository()

	n, err := repo.Increment(ctx, "calc")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	n, err = repo.Increment(ctx, "calc")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"calc": 2}, counts)
}
