package cgo

// #include <stdlib.h>
// #include <dlfcn.h>
import "C"
import (
	"fmt"
	"unsafe"
)

// DlOpen loads a shared library and returns its handle. An empty path opens
// the calling process itself, which resolves symbols already linked in
// (libc, and anything loaded with RTLD_GLOBAL).
func DlOpen(path string) (unsafe.Pointer, error) {
	var cpath *C.char
	if path != "" {
		cpath = C.CString(path)
		defer C.free(unsafe.Pointer(cpath))
	}

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, dlError(fmt.Sprintf("dlopen %q", path))
	}
	return handle, nil
}

// DlSym resolves a symbol in an opened library.
func DlSym(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	// Clear any stale error state; a symbol can legitimately be NULL.
	C.dlerror()
	sym := C.dlsym(handle, cname)
	if sym == nil {
		if msg := C.dlerror(); msg != nil {
			return nil, fmt.Errorf("dlsym %q: %s", name, C.GoString(msg))
		}
		return nil, fmt.Errorf("dlsym %q: symbol is NULL", name)
	}
	return sym, nil
}

// DlClose unloads a library handle.
func DlClose(handle unsafe.Pointer) error {
	if C.dlclose(handle) != 0 {
		return dlError("dlclose")
	}
	return nil
}

func dlError(op string) error {
	if msg := C.dlerror(); msg != nil {
		return fmt.Errorf("%s: %s", op, C.GoString(msg))
	}
	return fmt.Errorf("%s failed", op)
}
