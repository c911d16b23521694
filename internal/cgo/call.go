package cgo

// #include <stdlib.h>
// #include <string.h>
// #include <ffi.h>
import "C"
import "unsafe"

// Call dispatches one foreign call through the prepared CIF. fn is the
// native entry point, ret points to caller-owned return storage (at least
// sizeof(ffi_arg) bytes for integral returns), and args holds one pointer
// per argument, each to live storage laid out per the matching descriptor.
//
// No validation happens here; a mismatch between args and the CIF is
// undefined behavior, not a reported error. The call blocks the current
// thread until the foreign function returns.
func Call(cif *CIF, fn unsafe.Pointer, ret unsafe.Pointer, args []unsafe.Pointer) {
	var avalues unsafe.Pointer
	if len(args) > 0 {
		// ffi_call reads the pointer array from native memory, so stage it
		// in a C allocation for the duration of the call.
		avalues = C.malloc(C.size_t(len(args)) * C.size_t(unsafe.Sizeof(uintptr(0))))
		slots := (*[1 << 28]unsafe.Pointer)(avalues)[:len(args):len(args)]
		copy(slots, args)
		defer C.free(avalues)
	}

	C.ffi_call((*C.ffi_cif)(cif.ptr),
		(*[0]byte)(fn),
		ret,
		(*unsafe.Pointer)(avalues))
}
