package core

import "errors"

// Cause classifies why a source item was dropped.
type Cause uint8

const (
	CauseUnknown Cause = iota
	CauseMissingField
	CauseWrongType
	CauseDuplicateID
	CauseNotAnObject
)

var causeSentinels = [...]error{
	CauseMissingField: ErrMissingField,
	CauseWrongType:    ErrWrongType,
	CauseDuplicateID:  ErrDuplicateID,
	CauseNotAnObject:  ErrNotAnObject,
}

// CauseOf finds the validation sentinel in err's chain.
func CauseOf(err error) Cause {
	for c := CauseMissingField; int(c) < len(causeSentinels); c++ {
		if errors.Is(err, causeSentinels[c]) {
			return c
		}
	}
	return CauseUnknown
}

// Err returns the sentinel for c, nil for CauseUnknown.
func (c Cause) Err() error {
	if c == CauseUnknown || int(c) >= len(causeSentinels) {
		return nil
	}
	return causeSentinels[c]
}

// DiagnosticRecord is the stored form of a Diagnostic. The error is kept as its
// cause and message so the chain can be rebuilt when the record is read back.
type DiagnosticRecord struct {
	Index   int
	Line    int
	ID      string
	Field   string
	Cause   Cause
	Invalid bool // the error wrapped ErrInvalidEntry
	Message string
}

// Record converts d into its stored form.
func (d Diagnostic) Record() DiagnosticRecord {
	r := DiagnosticRecord{Index: d.Index, Line: d.Line, ID: d.ID, Field: d.Field}
	if d.Err != nil {
		r.Cause = CauseOf(d.Err)
		r.Invalid = errors.Is(d.Err, ErrInvalidEntry)
		r.Message = d.Err.Error()
	}
	return r
}

// Diagnostic rebuilds the diagnostic. Its error carries the original message and
// matches the same sentinels with errors.Is.
func (r DiagnosticRecord) Diagnostic() Diagnostic {
	d := Diagnostic{Index: r.Index, Line: r.Line, ID: r.ID, Field: r.Field}
	if r.Message == "" && r.Cause == CauseUnknown && !r.Invalid {
		return d
	}
	e := &storedError{msg: r.Message}
	if r.Invalid {
		e.causes = append(e.causes, ErrInvalidEntry)
	}
	if err := r.Cause.Err(); err != nil {
		e.causes = append(e.causes, err)
	}
	d.Err = e
	return d
}

type storedError struct {
	msg    string
	causes []error
}

func (e *storedError) Error() string {
	return e.msg
}

func (e *storedError) Unwrap() []error {
	return e.causes
}
