// Package cgo provides the CGO bindings to the native libffi library.
// This package should ONLY be imported by the pkg/ffi package.
// All CGO complexity is isolated here.
package cgo

/*
#cgo LDFLAGS: -lffi -ldl
#cgo darwin CFLAGS: -I/opt/homebrew/opt/libffi/include -I/usr/local/opt/libffi/include
#cgo darwin LDFLAGS: -L/opt/homebrew/opt/libffi/lib -L/usr/local/opt/libffi/lib

#include <stdlib.h>
#include <ffi.h>
*/
import "C"
import (
	"sync"
	"unsafe"
)

// Status mirrors ffi_status, the only error channel libffi exposes.
type Status int

const (
	OK Status = iota
	BadTypedef
	BadAbi
	Unknown
)

func mapStatus(status C.ffi_status) Status {
	switch status {
	case C.FFI_OK:
		return OK
	case C.FFI_BAD_TYPEDEF:
		return BadTypedef
	case C.FFI_BAD_ABI:
		return BadAbi
	default:
		return Unknown
	}
}

// closureBinding holds everything the dispatcher needs to route a native
// invocation back into Go. The CIF reference keeps the argument count at
// hand and, more importantly, keeps the descriptor alive while the closure
// is callable.
type closureBinding struct {
	cif      *CIF
	fn       ClosureFunc
	userData unsafe.Pointer
}

// closureMap stores prepared closure bindings keyed by a C-allocated opaque
// pointer. The key is what libffi stores as user_data inside the closure
// control block; going through the map keeps Go pointers out of C memory.
var closureMap sync.Map

func registerBinding(b *closureBinding) unsafe.Pointer {
	key := C.malloc(1)
	if key == nil {
		return nil
	}
	closureMap.Store(key, b)
	return key
}

func unregisterBinding(key unsafe.Pointer) {
	if key == nil {
		return
	}
	closureMap.Delete(key)
	C.free(key)
}

// goClosureDispatch is called by libffi-generated trampoline code whenever a
// prepared closure's entry point is invoked. It recovers the Go binding from
// the key and forwards the raw call frame.
//
//export goClosureDispatch
func goClosureDispatch(cif *C.ffi_cif, ret unsafe.Pointer, args *unsafe.Pointer, key unsafe.Pointer) {
	v, ok := closureMap.Load(key)
	if !ok {
		// Invocation raced with ClosureFree; the contract makes that
		// undefined behavior, so silently dropping it is as good as it gets.
		return
	}
	b := v.(*closureBinding)

	nargs := b.cif.nargs
	var argv []unsafe.Pointer
	if nargs > 0 {
		argv = (*[1 << 28]unsafe.Pointer)(unsafe.Pointer(args))[:nargs:nargs]
	}

	b.fn(ret, argv, b.userData)
}
