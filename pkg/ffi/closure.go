package ffi

import (
	"unsafe"

	"github.com/coinbase/libffi-go/internal/cgo"
)

// Callback is the Go function a prepared closure forwards to. It receives
// the CIF the closure was prepared with, a pointer to return storage it must
// fill in before returning (widened to a full word for small integral return
// types), the argument addresses laid out per the CIF's descriptors, and the
// userData pointer captured at preparation time.
//
// The same userData pointer is delivered on every invocation; the callback
// is responsible for its own synchronization if it mutates what userData
// points to.
type Callback func(cif *CIF, ret unsafe.Pointer, args []unsafe.Pointer, userData unsafe.Pointer)

type closureState int

const (
	closureAllocated closureState = iota
	closurePrepared
	closureFreed
)

// Closure is a dual-aliased region of executable and writable memory. The
// writable control block and the executable entry point are distinct
// addresses over the same allocation, mapped with different protections.
//
// Lifecycle: AllocClosure → Prepare → invoked zero or more times → Free.
// Rebinding a prepared closure is not supported; free it and allocate a
// fresh one. Prepare and Free must not race with each other or with an
// in-flight invocation.
type Closure struct {
	h     *cgo.Closure
	state closureState
}

// AllocClosure reserves a closure region. The entry point returned by Code
// is not callable until Prepare succeeds.
func AllocClosure() (*Closure, error) {
	h, err := cgo.ClosureAlloc()
	if err != nil {
		return nil, &Error{Op: "AllocClosure", Err: err}
	}
	return &Closure{h: h}, nil
}

// Code returns the executable entry point. Native code may call it, with
// the calling convention of the CIF bound by Prepare, until Free.
func (cl *Closure) Code() unsafe.Pointer {
	return cl.h.Code()
}

// Prepare binds the closure to a call interface, a callback, and a captured
// userData pointer. After it succeeds, every invocation of Code marshals the
// incoming arguments and return slot exactly as a dispatcher call would and
// forwards them to cb together with userData.
//
// Fails with ErrBadTypedef or ErrBadAbi when the platform rejects the
// combination of interface and trampoline, and with ErrClosureBound or
// ErrClosureFreed on lifecycle misuse detectable in the wrapper itself.
//
// The CIF, the callback, and the userData region must all stay valid for as
// long as the entry point might still be called.
func (cl *Closure) Prepare(cif *CIF, cb Callback, userData unsafe.Pointer) error {
	switch cl.state {
	case closurePrepared:
		return &Error{Op: "Prepare", Err: ErrClosureBound}
	case closureFreed:
		return &Error{Op: "Prepare", Err: ErrClosureFreed}
	}

	forward := func(ret unsafe.Pointer, args []unsafe.Pointer, userData unsafe.Pointer) {
		cb(cif, ret, args, userData)
	}
	if err := statusError("Prepare", cgo.PrepClosureLoc(cl.h, cif.h, forward, userData)); err != nil {
		return err
	}
	cl.state = closurePrepared
	return nil
}

// Free releases the dual mapping and invalidates both addresses. The caller
// is solely responsible for ensuring no native code still holds the entry
// point; an invocation after Free is undefined behavior.
//
// Free on an already freed closure returns ErrClosureFreed without touching
// native memory.
func (cl *Closure) Free() error {
	if cl.state == closureFreed {
		return &Error{Op: "Free", Err: ErrClosureFreed}
	}
	cgo.ClosureFree(cl.h)
	cl.state = closureFreed
	return nil
}
