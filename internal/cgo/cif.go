package cgo

// #include <stdlib.h>
// #include <ffi.h>
import "C"
import "unsafe"

// CIF wraps a C-allocated ffi_cif together with the C-allocated argument
// type array it references. Both stay alive until Free; libffi keeps raw
// pointers into the array, so the array cannot live in Go memory.
type CIF struct {
	ptr    unsafe.Pointer // *ffi_cif
	atypes unsafe.Pointer // ffi_type** array, nil when nargs == 0
	nargs  int
}

// PrepCIF initializes a call interface with the given ABI, return type, and
// argument types. The CIF retains raw references to every descriptor; if any
// of them stops being live while the CIF is used, the result is undefined.
func PrepCIF(abi int, rtype Type, atypes []Type) (*CIF, Status) {
	cif, arr := allocCIF(len(atypes), atypes)
	status := C.ffi_prep_cif((*C.ffi_cif)(cif),
		C.ffi_abi(abi),
		C.uint(len(atypes)),
		(*C.ffi_type)(rtype.ptr),
		(**C.ffi_type)(arr))
	if st := mapStatus(status); st != OK {
		freeCIF(cif, arr)
		return nil, st
	}
	return &CIF{ptr: cif, atypes: arr, nargs: len(atypes)}, OK
}

// PrepCIFVar initializes a call interface for a variadic function with
// nfixed statically typed arguments followed by len(atypes)-nfixed variadic
// ones. The variadic tail types are fixed at build time; a different tail
// needs a fresh CIF.
func PrepCIFVar(abi, nfixed int, rtype Type, atypes []Type) (*CIF, Status) {
	cif, arr := allocCIF(len(atypes), atypes)
	status := C.ffi_prep_cif_var((*C.ffi_cif)(cif),
		C.ffi_abi(abi),
		C.uint(nfixed),
		C.uint(len(atypes)),
		(*C.ffi_type)(rtype.ptr),
		(**C.ffi_type)(arr))
	if st := mapStatus(status); st != OK {
		freeCIF(cif, arr)
		return nil, st
	}
	return &CIF{ptr: cif, atypes: arr, nargs: len(atypes)}, OK
}

// ArgCount returns the total number of arguments the CIF was built with.
func (c *CIF) ArgCount() int {
	return c.nargs
}

// Free releases the C allocations backing the CIF. The CIF must not be used
// for calls or closure preparations afterwards.
func (c *CIF) Free() {
	if c == nil || c.ptr == nil {
		return
	}
	freeCIF(c.ptr, c.atypes)
	c.ptr = nil
	c.atypes = nil
}

func allocCIF(nargs int, atypes []Type) (cif, arr unsafe.Pointer) {
	cif = C.malloc(C.sizeof_ffi_cif)
	if nargs > 0 {
		arr = C.malloc(C.size_t(nargs) * C.size_t(unsafe.Sizeof(uintptr(0))))
		slots := (*[1 << 28]unsafe.Pointer)(arr)[:nargs:nargs]
		for i, t := range atypes {
			slots[i] = t.ptr
		}
	}
	return cif, arr
}

func freeCIF(cif, arr unsafe.Pointer) {
	if arr != nil {
		C.free(arr)
	}
	C.free(cif)
}
