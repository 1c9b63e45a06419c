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

package search

import "errors"

var (
	// ErrStaleQuery is returned when a query was superseded by a newer query, filter
	// change or republished entry set before its results could be delivered.
	// It is a normal outcome while typing, not a failure.
	ErrStaleQuery = errors.New("query superseded")

	// ErrSessionClosed is returned by session calls after Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrCatalogRequired is returned when a session is created without a catalog.
	ErrCatalogRequired = errors.New("catalog required")

	// ErrRankerRequired is returned when a session is created without a ranker.
	ErrRankerRequired = errors.New("ranker required")
)
