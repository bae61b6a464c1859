// Package fault classifies failures raised while transforming a chunk set.
//
// Every error that leaves the codec or a store is tagged with one of three
// kinds so the orchestration layer can decide on messaging and cleanup:
//
//	ErrIO      local disk or stream failure
//	ErrCodec   malformed compressed data, malformed text record, broken chunk set
//	ErrRemote  failure reported by the remote object store
//
// Kinds are matched with errors.Is.
package fault

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrIO     = errors.New("io error")
	ErrCodec  = errors.New("codec error")
	ErrRemote = errors.New("remote error")
)

// Error is a classified failure.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IO tags err as a local I/O failure.
func IO(op string, err error) error {
	return wrap(ErrIO, op, err)
}

// Codec tags err as a codec failure.
func Codec(op string, err error) error {
	return wrap(ErrCodec, op, err)
}

// Remote tags err as a remote store failure.
func Remote(op string, err error) error {
	return wrap(ErrRemote, op, err)
}

// Kind returns the kind of err, or nil if err was never classified.
func Kind(err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return nil
}

// wrap keeps an existing classification and only adds context in that case.
func wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		if op == "" {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
