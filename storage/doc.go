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

// Package storage provides the cache abstraction layer for launchpad.
//
// This package defines repository interfaces that decouple cache persistence from the
// loader. Different backends (a single binary file, BadgerDB, in-memory) can be used
// interchangeably:
//
//	repo := file.NewSnapshotRepository("/home/me/.cache/launchpad/entries.bin")
//	set, ok := repo.Load(ctx, fingerprint)
//
// # Snapshot Format
//
// A snapshot is a framed binary blob:
//
//	magic "LPADSNAP" | schema version (uint16 LE) | payload | xxhash64(payload) (uint64 LE)
//
// The payload holds the source fingerprint, the entry set version, the load time,
// and the entries and diagnostics encoded with mus-go.
//
// # Miss Semantics
//
// SnapshotRepository.Load never returns an error. A missing snapshot, a fingerprint
// or schema mismatch, a checksum failure and any decoding failure are all reported
// as a miss. Store is best-effort; callers log its error and carry on.
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Concurrent writers are not
// expected: the loader serialises reloads.
package storage
