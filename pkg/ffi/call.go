package ffi

import (
	"unsafe"

	"github.com/coinbase/libffi-go/internal/cgo"
)

// Call dispatches a single foreign call through the prepared CIF.
//
// fn is the native entry point. ret points to caller-owned storage for the
// return value; for integral return types narrower than a machine word
// libffi widens the result, so the buffer must hold at least one word. args
// holds exactly ArgCount entries, each pointing at live storage whose
// layout matches the corresponding argument descriptor.
//
// Nothing is validated at call time. A mismatch between args and the CIF
// corrupts memory rather than returning an error; that is the contract of
// the underlying calling mechanism. The call blocks the current goroutine's
// thread until the foreign function returns, and there is no cancellation.
func (c *CIF) Call(fn, ret unsafe.Pointer, args ...unsafe.Pointer) {
	cgo.Call(c.h, fn, ret, args)
}

// CallValue dispatches through the CIF and returns the result as an R. It
// owns correctly sized return storage for the duration of the call, widening
// as libffi requires, so small integral results come back usable without the
// caller reserving a word-sized buffer.
//
// R must match the CIF's return type descriptor; as with Call, a mismatch is
// undefined behavior.
func CallValue[R any](c *CIF, fn unsafe.Pointer, args ...unsafe.Pointer) R {
	var out R
	if unsafe.Sizeof(out) >= unsafe.Sizeof(uintptr(0)) {
		c.Call(fn, unsafe.Pointer(&out), args...)
		return out
	}

	// Narrow integral returns are widened to a full word; on the
	// little-endian targets this module supports the value sits in the low
	// bytes.
	var word uint64
	c.Call(fn, unsafe.Pointer(&word), args...)
	return *(*R)(unsafe.Pointer(&word))
}
