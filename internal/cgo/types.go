package cgo

// #include <ffi.h>
import "C"
import "unsafe"

// Type is an opaque reference to an ffi_type descriptor. The referenced
// descriptor is externally owned: this package never copies, mutates, or
// frees it, and every CIF built from it retains the raw reference for its
// whole lifetime.
type Type struct {
	ptr unsafe.Pointer
}

// TypeAt wraps a raw pointer to a caller-owned ffi_type. The caller is
// responsible for keeping the descriptor alive and unmoved for as long as
// any CIF or closure built from it exists.
func TypeAt(p unsafe.Pointer) Type {
	return Type{ptr: p}
}

// Raw returns the underlying descriptor pointer.
func (t Type) Raw() unsafe.Pointer {
	return t.ptr
}

// IsNil reports whether the reference is empty.
func (t Type) IsNil() bool {
	return t.ptr == nil
}

// Builtin descriptor references re-exported from libffi. These are static
// singletons inside the library, so the lifetime invariant is trivially
// satisfied for them.

func TypeVoid() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_void)} }

func TypeUint8() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_uint8)} }

func TypeSint8() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_sint8)} }

func TypeUint16() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_uint16)} }

func TypeSint16() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_sint16)} }

func TypeUint32() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_uint32)} }

func TypeSint32() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_sint32)} }

func TypeUint64() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_uint64)} }

func TypeSint64() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_sint64)} }

func TypeFloat() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_float)} }

func TypeDouble() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_double)} }

func TypePointer() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_pointer)} }

func TypeLongdouble() Type { return Type{ptr: unsafe.Pointer(&C.ffi_type_longdouble)} }

// DefaultABI returns the platform's FFI_DEFAULT_ABI value.
func DefaultABI() int {
	return int(C.FFI_DEFAULT_ABI)
}
