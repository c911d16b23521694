package ffi

import (
	"fmt"

	"github.com/coinbase/libffi-go/internal/cgo"
)

// CIF is a prepared call interface: an ABI tag, a return type, and an
// ordered argument type list, validated once and reusable for any number of
// calls and closure preparations. A CIF is immutable after successful
// preparation and safe for concurrent use.
type CIF struct {
	h        *cgo.CIF
	abi      ABI
	rtype    Type
	atypes   []Type
	nfixed   int
	variadic bool
}

// PrepCIF builds a call interface for a fixed-arity function. It fails with
// ErrBadTypedef when a descriptor is malformed and ErrBadAbi when the ABI is
// not supported on this platform. On success ArgCount equals len(atypes).
//
// The CIF references the descriptors, it does not copy them; see the
// lifetime rule on Type.
func PrepCIF(abi ABI, rtype Type, atypes ...Type) (*CIF, error) {
	h, st := cgo.PrepCIF(int(abi), rtype.ref, refs(atypes))
	if err := statusError("PrepCIF", st); err != nil {
		return nil, err
	}
	return &CIF{
		h:      h,
		abi:    abi,
		rtype:  rtype,
		atypes: append([]Type(nil), atypes...),
		nfixed: len(atypes),
	}, nil
}

// PrepCIFVar builds a call interface for a variadic function with nfixed
// statically typed arguments followed by len(atypes)-nfixed variadic ones.
//
// The variadic tail types are fixed at preparation time: atypes names the
// type of every argument of one concrete call shape, and a call site with a
// different tail needs its own CIF. Variadic arguments undergo default C
// promotions, so tail types narrower than Sint32/Uint32 are rejected by the
// platform.
func PrepCIFVar(abi ABI, nfixed int, rtype Type, atypes ...Type) (*CIF, error) {
	if nfixed < 0 || nfixed > len(atypes) {
		return nil, &Error{
			Op:  "PrepCIFVar",
			Err: fmt.Errorf("nfixed %d out of range for %d argument types", nfixed, len(atypes)),
		}
	}
	h, st := cgo.PrepCIFVar(int(abi), nfixed, rtype.ref, refs(atypes))
	if err := statusError("PrepCIFVar", st); err != nil {
		return nil, err
	}
	return &CIF{
		h:        h,
		abi:      abi,
		rtype:    rtype,
		atypes:   append([]Type(nil), atypes...),
		nfixed:   nfixed,
		variadic: true,
	}, nil
}

// ABI returns the calling convention the CIF was prepared with.
func (c *CIF) ABI() ABI {
	return c.abi
}

// ArgCount returns the total number of arguments, fixed plus variadic.
func (c *CIF) ArgCount() int {
	return len(c.atypes)
}

// FixedArgCount returns the number of statically typed arguments. For a
// non-variadic CIF it equals ArgCount.
func (c *CIF) FixedArgCount() int {
	return c.nfixed
}

// Variadic reports whether the CIF was prepared with PrepCIFVar.
func (c *CIF) Variadic() bool {
	return c.variadic
}

// ReturnType returns the return type reference.
func (c *CIF) ReturnType() Type {
	return c.rtype
}

// ArgTypes returns a copy of the argument type references, in call order.
func (c *CIF) ArgTypes() []Type {
	return append([]Type(nil), c.atypes...)
}

// Free releases the native storage backing the CIF. The caller must ensure
// no call, closure preparation, or prepared closure still uses it; using
// the CIF after Free is undefined behavior.
func (c *CIF) Free() {
	if c == nil {
		return
	}
	c.h.Free()
}

func refs(atypes []Type) []cgo.Type {
	if len(atypes) == 0 {
		return nil
	}
	out := make([]cgo.Type, len(atypes))
	for i, t := range atypes {
		out[i] = t.ref
	}
	return out
}
