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

import "errors"

var (
	// ErrNotFound indicates that no snapshot is stored.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrCorruptSnapshot indicates a snapshot that failed structural decoding.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrChecksumMismatch indicates the snapshot payload does not match its checksum.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrSchemaMismatch indicates a snapshot written by a different schema version.
	ErrSchemaMismatch = errors.New("snapshot schema version mismatch")

	// ErrFingerprintMismatch indicates a snapshot taken from different source content.
	ErrFingerprintMismatch = errors.New("snapshot fingerprint mismatch")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")
)
