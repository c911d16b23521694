package cgo

/*
#include <ffi.h>

extern void goClosureDispatch(ffi_cif*, void*, void**, void*);

// ffi_prep_closure_loc wants a plain C function pointer; hand it the
// exported Go dispatcher once, here, instead of at every call site.
static ffi_status prep_closure(ffi_closure* closure, ffi_cif* cif,
                               void* key, void* code) {
	return ffi_prep_closure_loc(closure, cif, goClosureDispatch, key, code);
}
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// ClosureFunc is the Go side of a closure invocation. ret points at return
// storage the callback must fill in before returning (widened to a full
// ffi_arg word for small integral return types), args holds one pointer per
// argument of the bound CIF, and userData is the pointer captured at
// preparation time.
type ClosureFunc func(ret unsafe.Pointer, args []unsafe.Pointer, userData unsafe.Pointer)

// Closure pairs the writable ffi_closure control block with the distinct
// executable entry point aliasing the same dual-mapped region.
type Closure struct {
	writable unsafe.Pointer // *ffi_closure
	code     unsafe.Pointer // executable alias
	key      unsafe.Pointer // registry key, nil until prepared
}

// ClosureAlloc reserves a dual-mapped closure region. The returned entry
// point is not callable until PrepClosureLoc succeeds.
func ClosureAlloc() (*Closure, error) {
	var code unsafe.Pointer
	writable := C.ffi_closure_alloc(C.sizeof_ffi_closure, &code)
	if writable == nil {
		return nil, fmt.Errorf("ffi_closure_alloc failed")
	}
	return &Closure{writable: writable, code: code}, nil
}

// Code returns the executable entry point of the closure.
func (cl *Closure) Code() unsafe.Pointer {
	return cl.code
}

// PrepClosureLoc binds the closure so that invoking its entry point with the
// calling convention described by cif routes through fn with userData. The
// CIF, the callback, and whatever userData points to must all stay live for
// as long as the entry point might be called.
func PrepClosureLoc(cl *Closure, cif *CIF, fn ClosureFunc, userData unsafe.Pointer) Status {
	key := registerBinding(&closureBinding{cif: cif, fn: fn, userData: userData})
	if key == nil {
		return Unknown
	}

	status := C.prep_closure((*C.ffi_closure)(cl.writable),
		(*C.ffi_cif)(cif.ptr),
		key,
		cl.code)
	if st := mapStatus(status); st != OK {
		unregisterBinding(key)
		return st
	}
	cl.key = key
	return OK
}

// ClosureFree releases the dual mapping and drops the callback binding.
// Both addresses are invalid afterwards; the caller must ensure no native
// code can still reach the entry point.
func ClosureFree(cl *Closure) {
	if cl == nil || cl.writable == nil {
		return
	}
	unregisterBinding(cl.key)
	C.ffi_closure_free(cl.writable)
	cl.writable = nil
	cl.code = nil
	cl.key = nil
}
