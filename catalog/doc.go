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

// Package catalog owns the authoritative entry set.
//
// A Catalog decides whether the cached snapshot can be trusted or the source must be
// parsed again, publishes the result as an immutable core.EntrySet and persists fresh
// loads in the background:
//
//	cat, err := catalog.New(source.NewFileSource(path), file.NewSnapshotRepository(cachePath))
//	if err != nil {
//	    return err
//	}
//	defer cat.Close()
//
//	set, err := cat.Load(ctx)        // cache fast path, falls back to the source
//	set, err = cat.ForceReload(ctx)  // always parses the source
//
// Reloads are single-flight: concurrent callers share one in-progress reload and its
// result. Readers use Current, which returns either the old or the new complete set.
//
// Source-change watchers call RequestReload, which queues at most one pending reload
// for the Run loop; requests arriving while one is pending are coalesced.
//
// Subscribers receive an Event when a reload starts, when a new set is published,
// when a reload finds nothing new, and when a reload fails. A failed reload leaves the
// previous set in place.
package catalog
