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

// Package source reads launcher entry definitions and turns them into entries.
//
// A definition source is a sequence of item objects. The sequence may be the top
// level of the document or live under an "entries" (or "launchers") key:
//
//	[
//	  {"id": "calc", "title": "Calculator", "action": "gnome-calculator"},
//	  {"id": "cal2", "title": "Calendar", "category": "office", "priority": 1}
//	]
//
// JSON, YAML and TOML are supported; the format is chosen from the file extension
// and falls back to sniffing the content.
//
// # Item fields
//
//   - id (string, required)
//   - title (string, required)
//   - subtitle or description (string)
//   - keywords (string or list of strings)
//   - category (string, default "uncategorized")
//   - tags (list of strings)
//   - alias (string, the mode the entry belongs to)
//   - icon (string)
//   - action (string or object, kept as an opaque payload)
//   - priority (number, default 0)
//   - enabled (bool, default true)
//
// Unknown fields are ignored. An item that is not an object, lacks a required
// field, holds a value of the wrong type, or repeats an earlier identifier is
// dropped and reported as a core.Diagnostic. Only a document that cannot be
// parsed at the top level fails the whole load with ErrSourceUnreadable.
package source
