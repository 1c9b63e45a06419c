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

package core

import (
	"fmt"
	"math"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Title must not be empty
//   - Priority must be a finite number
//
// NOT validated (defaults are applied by the loader):
//   - Category (empty means DefaultCategory)
//   - Action (entries without an action are still listed)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.ID == "" {
		return fmt.Errorf("%w: %w: id", ErrInvalidEntry, ErrMissingField)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: %w: title", ErrInvalidEntry, ErrMissingField)
	}

	if math.IsNaN(entry.Priority) || math.IsInf(entry.Priority, 0) {
		return fmt.Errorf("%w: %w: priority must be finite", ErrInvalidEntry, ErrWrongType)
	}

	return nil
}

// ApplyDefaults fills optional fields that were left unset.
func ApplyDefaults(entry *Entry) {
	if entry.Category == "" {
		entry.Category = DefaultCategory
	}
}
