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

import "errors"

// Item validation errors. A source item failing any of these is dropped and reported
// as a Diagnostic; the rest of the load continues.
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrMissingField indicates a required field is absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrWrongType indicates a field holds a value of the wrong type.
	ErrWrongType = errors.New("wrong value type")

	// ErrDuplicateID indicates an identifier already used by an earlier item.
	ErrDuplicateID = errors.New("duplicate identifier")

	// ErrNotAnObject indicates a source item that is not a key/value object.
	ErrNotAnObject = errors.New("item is not an object")
)
