package core

import (
	"errors"
	"math"
	"testing"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *Entry
		wantErr error
	}{
		{
			name:  "valid entry",
			entry: &Entry{ID: "calc", Title: "Calculator"},
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "missing id",
			entry:   &Entry{Title: "Calculator"},
			wantErr: ErrMissingField,
		},
		{
			name:    "missing title",
			entry:   &Entry{ID: "calc"},
			wantErr: ErrMissingField,
		},
		{
			name:    "non finite priority",
			entry:   &Entry{ID: "calc", Title: "Calculator", Priority: math.Inf(1)},
			wantErr: ErrWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("ValidateEntry() error = %v, should wrap ErrInvalidEntry", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	e := &Entry{ID: "calc", Title: "Calculator"}
	ApplyDefaults(e)
	if e.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", e.Category, DefaultCategory)
	}

	e = &Entry{ID: "calc", Title: "Calculator", Category: "tools"}
	ApplyDefaults(e)
	if e.Category != "tools" {
		t.Errorf("Category = %q, want tools", e.Category)
	}
}
