package ffi

import (
	"errors"
	"fmt"

	"github.com/coinbase/libffi-go/internal/cgo"
)

var (
	// ErrBadTypedef indicates a type descriptor (return or argument) is
	// structurally invalid for this platform, such as a composite whose
	// element layout cannot be resolved.
	ErrBadTypedef = errors.New("ffi: bad type definition")

	// ErrBadAbi indicates the requested calling convention is not one this
	// platform implements.
	ErrBadAbi = errors.New("ffi: unsupported ABI")

	// ErrClosureBound indicates Prepare was called on a closure that is
	// already prepared. Rebinding in place is not supported; free the
	// closure and allocate a fresh one.
	ErrClosureBound = errors.New("ffi: closure already prepared")

	// ErrClosureFreed indicates an operation on a closure after Free.
	ErrClosureFreed = errors.New("ffi: closure freed")
)

// Error wraps an underlying error with the operation that produced it.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ffi.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// statusError maps an ffi_status from the bindings layer onto the public
// error taxonomy. Retrying a failed build or preparation with the same
// inputs cannot succeed, so nothing here is transient.
func statusError(op string, st cgo.Status) error {
	switch st {
	case cgo.OK:
		return nil
	case cgo.BadTypedef:
		return &Error{Op: op, Err: ErrBadTypedef}
	case cgo.BadAbi:
		return &Error{Op: op, Err: ErrBadAbi}
	default:
		return &Error{Op: op, Err: fmt.Errorf("unexpected ffi_status %d", int(st))}
	}
}
