package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a per-file failure. Only KindIO aborts a record;
// the other kinds surface as missing fields or (for persistence and
// recycle) as logged, non-fatal pipeline events.
type ErrorKind string

const (
	KindIO          ErrorKind = "io"
	KindDecode      ErrorKind = "decode"
	KindMetadata    ErrorKind = "metadata"
	KindPersistence ErrorKind = "persistence"
	KindRecycle     ErrorKind = "recycle"
	KindTimeout     ErrorKind = "timeout"
)

// Error is a typed per-file failure carrying the path it belongs to.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error for %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a typed extraction failure.
func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf returns the kind of a typed extraction error, or KindIO for
// untyped errors so callers always have a bucket to count under.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}
