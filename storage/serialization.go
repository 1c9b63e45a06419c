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

package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/launchpad/core"
)

var snapshotMagic = []byte("LPADSNAP")

const (
	headerSize   = 8 + 2
	checksumSize = 8
)

// MarshalSnapshot serializes an entry set into a framed snapshot.
func MarshalSnapshot(set *core.EntrySet) []byte {
	entries := set.Entries()
	diags := set.Diagnostics()
	loadedAt := set.LoadedAt.UnixNano()

	size := ord.String.Size(set.Fingerprint)
	size += varint.Uint64.Size(set.Version)
	size += varint.Int64.Size(loadedAt)
	size += varint.Int.Size(len(entries))
	for _, e := range entries {
		size += core.EntryMUS.Size(e)
	}
	size += varint.Int.Size(len(diags))
	records := make([]core.DiagnosticRecord, len(diags))
	for i, d := range diags {
		records[i] = d.Record()
		size += core.DiagnosticRecordMUS.Size(records[i])
	}

	buf := make([]byte, headerSize+size+checksumSize)
	copy(buf, snapshotMagic)
	binary.LittleEndian.PutUint16(buf[len(snapshotMagic):], core.SchemaVersion)

	payload := buf[headerSize : headerSize+size]
	n := ord.String.Marshal(set.Fingerprint, payload)
	n += varint.Uint64.Marshal(set.Version, payload[n:])
	n += varint.Int64.Marshal(loadedAt, payload[n:])
	n += varint.Int.Marshal(len(entries), payload[n:])
	for _, e := range entries {
		n += core.EntryMUS.Marshal(e, payload[n:])
	}
	n += varint.Int.Marshal(len(diags), payload[n:])
	for _, r := range records {
		n += core.DiagnosticRecordMUS.Marshal(r, payload[n:])
	}

	binary.LittleEndian.PutUint64(buf[headerSize+size:], xxhash.Sum64(payload))
	return buf
}

// UnmarshalSnapshot decodes a framed snapshot. Every failure wraps one of
// ErrTruncatedData, ErrSchemaMismatch, ErrChecksumMismatch or ErrCorruptSnapshot.
func UnmarshalSnapshot(data []byte) (set *core.EntrySet, err error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedData, len(data))
	}
	if !bytes.Equal(data[:len(snapshotMagic)], snapshotMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptSnapshot)
	}
	if v := binary.LittleEndian.Uint16(data[len(snapshotMagic):]); v != core.SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, v, core.SchemaVersion)
	}

	payload := data[headerSize : len(data)-checksumSize]
	sum := binary.LittleEndian.Uint64(data[len(data)-checksumSize:])
	if xxhash.Sum64(payload) != sum {
		return nil, ErrChecksumMismatch
	}

	defer func() {
		if r := recover(); r != nil {
			set = nil
			err = fmt.Errorf("%w: %v", ErrCorruptSnapshot, r)
		}
	}()
	return decodePayload(payload)
}

func decodePayload(bs []byte) (*core.EntrySet, error) {
	fingerprint, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return nil, corrupt("fingerprint", err)
	}
	version, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, corrupt("version", err)
	}
	loadedAt, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, corrupt("load time", err)
	}

	count, n1, err := readCount(bs[n:])
	n += n1
	if err != nil {
		return nil, corrupt("entry count", err)
	}
	entries := make([]core.Entry, count)
	for i := range entries {
		entries[i], n1, err = core.EntryMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, corrupt(fmt.Sprintf("entry %d", i), err)
		}
	}

	count, n1, err = readCount(bs[n:])
	n += n1
	if err != nil {
		return nil, corrupt("diagnostic count", err)
	}
	var diags []core.Diagnostic
	if count > 0 {
		diags = make([]core.Diagnostic, count)
	}
	for i := range diags {
		var r core.DiagnosticRecord
		r, n1, err = core.DiagnosticRecordMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, corrupt(fmt.Sprintf("diagnostic %d", i), err)
		}
		diags[i] = r.Diagnostic()
	}
	if n != len(bs) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptSnapshot, len(bs)-n)
	}

	set := core.NewEntrySet(version, fingerprint, entries, diags)
	set.LoadedAt = time.Unix(0, loadedAt).UTC()
	set.FromCache = true
	return set, nil
}

// readCount reads a collection length and rejects values the buffer cannot hold.
func readCount(bs []byte) (int, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	if count < 0 || count > len(bs)-n {
		return 0, n, fmt.Errorf("%w: count %d", ErrTruncatedData, count)
	}
	return count, n, nil
}

func corrupt(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, what, err)
}
