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

// Package search matches, filters and ranks launcher entries.
//
// Matching is case-insensitive and works on runes. A query is compared against an
// entry's title, then its subtitle, then its keywords, and the first field that
// matches decides the score. Match quality falls into tiers, from best to worst:
//   - Exact: the whole field equals the query
//   - Substring: the query occurs contiguously in the field
//   - WordPrefix: the query is spelled by prefixes of consecutive words
//   - Subsequence: the query characters occur in order with gaps
//
// A Ranker runs the filter, score, sort and cap pipeline over an immutable
// core.EntrySet. A Session holds the per-user query state on top of a Ranker and
// follows entry set republishes from the catalog.
package search
