// Package dylib loads shared libraries and resolves the foreign entry
// points that ffi.CIF.Call dispatches to. It is a thin wrapper over
// dlopen/dlsym/dlclose with explicit lifecycle management.
package dylib

import (
	"context"
	"errors"
	"unsafe"

	"github.com/coinbase/libffi-go/internal/cgo"
	"github.com/coinbase/libffi-go/pkg/ffi/logging"
)

// ErrLibraryClosed indicates the library handle has already been closed.
var ErrLibraryClosed = errors.New("dylib: library closed")

// Library is an opened shared library handle. Symbols resolved from it stay
// valid until Close; dispatching to a symbol of a closed library is
// undefined behavior.
type Library struct {
	handle unsafe.Pointer
	path   string
	log    logging.Logger
	closed bool
}

// Option configures a Library at open time.
type Option func(*Library)

// WithLogger routes lifecycle events (open, close, symbol resolution
// failures) through the given logger instead of logging.New(nil).
func WithLogger(log logging.Logger) Option {
	return func(l *Library) {
		l.log = log
	}
}

// Open loads the shared library at path.
func Open(path string, opts ...Option) (*Library, error) {
	return open(path, opts)
}

// Self returns a handle to the calling process itself, resolving symbols
// already linked into it (libc, and anything loaded with RTLD_GLOBAL).
func Self(opts ...Option) (*Library, error) {
	return open("", opts)
}

func open(path string, opts []Option) (*Library, error) {
	l := &Library{path: path}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logging.New(nil)
	}

	handle, err := cgo.DlOpen(path)
	if err != nil {
		return nil, err
	}
	l.handle = handle

	l.log.Debug(context.Background(), "library opened",
		"path", displayPath(path),
		logging.Addr("handle", uintptr(handle)))
	return l, nil
}

// Symbol resolves name to a native entry point.
func (l *Library) Symbol(name string) (unsafe.Pointer, error) {
	if l.closed {
		return nil, ErrLibraryClosed
	}
	return cgo.DlSym(l.handle, name)
}

// Close unloads the library. It returns ErrLibraryClosed when called twice.
// The caller must ensure no CIF call or prepared closure can still reach a
// symbol of this library.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	if l.closed {
		return ErrLibraryClosed
	}

	if err := cgo.DlClose(l.handle); err != nil {
		return err
	}
	l.closed = true
	l.handle = nil

	l.log.Debug(context.Background(), "library closed", "path", displayPath(l.path))
	return nil
}

// Path returns the path the library was opened with, or "self" for the
// process handle.
func (l *Library) Path() string {
	return displayPath(l.path)
}

func displayPath(path string) string {
	if path == "" {
		return "self"
	}
	return path
}
