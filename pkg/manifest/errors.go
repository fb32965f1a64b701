package manifest

import "fmt"

// ParseError reports a manifest line that is not a well-formed record.
// It is fatal: a corrupt manifest must not be silently truncated.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid manifest line: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports a stage referencing a field absent from a record.
// A missing field indicates a pipeline misconfiguration, so it aborts the
// whole stage rather than skipping the record.
type MissingFieldError struct {
	Field  string
	Record string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("expected field %q in record %s but there isn't one", e.Field, e.Record)
}

// NewMissingField builds a MissingFieldError carrying a compact snippet of
// the offending record.
func NewMissingField(field string, rec *Record) *MissingFieldError {
	return &MissingFieldError{Field: field, Record: rec.Snippet()}
}

// FieldTypeError reports a typed getter applied to a value of the wrong type.
// Getters fail explicitly instead of coercing.
type FieldTypeError struct {
	Field string
	Want  string
	Value any
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q: expected %s, got %T (%v)", e.Field, e.Want, e.Value, e.Value)
}
