package ffi

import (
	"unsafe"

	"github.com/coinbase/libffi-go/internal/cgo"
)

// ABI identifies a native calling convention. The zero value is not a valid
// ABI; use DefaultABI unless a foreign interface demands otherwise.
type ABI int

// DefaultABI is the platform's default calling convention.
var DefaultABI = ABI(cgo.DefaultABI())

// Type is an opaque reference to a type descriptor: size, alignment, kind
// tag, and for composites the nested element references. Descriptors are
// externally owned; this package only ever holds references to them.
//
// Every Type used to build a CIF must remain valid and unmoved for the full
// lifetime of that CIF and of any closure prepared from it. Violating this
// is undefined behavior, not a reported error.
type Type struct {
	ref cgo.Type
}

// TypeAt references a caller-owned descriptor at a raw address, typically a
// composite type laid out by an external collaborator. The caller keeps the
// memory alive and pinned; see the lifetime rule on Type.
func TypeAt(p unsafe.Pointer) Type {
	return Type{ref: cgo.TypeAt(p)}
}

// Raw returns the address of the referenced descriptor.
func (t Type) Raw() unsafe.Pointer {
	return t.ref.Raw()
}

// Builtin descriptor references re-exported from libffi. These are static
// singletons, so their lifetime is the process lifetime.
var (
	Void       = Type{ref: cgo.TypeVoid()}
	Uint8      = Type{ref: cgo.TypeUint8()}
	Sint8      = Type{ref: cgo.TypeSint8()}
	Uint16     = Type{ref: cgo.TypeUint16()}
	Sint16     = Type{ref: cgo.TypeSint16()}
	Uint32     = Type{ref: cgo.TypeUint32()}
	Sint32     = Type{ref: cgo.TypeSint32()}
	Uint64     = Type{ref: cgo.TypeUint64()}
	Sint64     = Type{ref: cgo.TypeSint64()}
	Float      = Type{ref: cgo.TypeFloat()}
	Double     = Type{ref: cgo.TypeDouble()}
	Pointer    = Type{ref: cgo.TypePointer()}
	Longdouble = Type{ref: cgo.TypeLongdouble()}
)
