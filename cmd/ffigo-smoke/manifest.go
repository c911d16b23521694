package main

import (
	"fmt"
	"os"
	"strconv"
	"unsafe"

	"gopkg.in/yaml.v3"

	"github.com/coinbase/libffi-go/pkg/ffi"
)

// Manifest is the top-level smoke manifest: one shared library and the
// foreign calls to drive through it.
type Manifest struct {
	// Library is the shared library to load. Empty means the current
	// process, which resolves anything already linked in (libc).
	Library string `yaml:"library"`

	// Calls lists the foreign calls to perform, in order.
	Calls []CallSpec `yaml:"calls"`
}

// CallSpec describes a single foreign call: the symbol, its signature, and
// the argument values to marshal.
type CallSpec struct {
	// Symbol is the exported name to resolve.
	Symbol string `yaml:"symbol"`

	// Return names the return type (void, uint64, sint32, double, ...).
	Return string `yaml:"return"`

	// Args names the argument types, fixed prefix first. "string" is
	// shorthand for pointer with a NUL-terminated string payload.
	Args []string `yaml:"args,omitempty"`

	// Fixed marks a variadic call shape: the number of statically typed
	// arguments before the per-shape variadic tail. Zero means non-variadic.
	Fixed int `yaml:"fixed,omitempty"`

	// Values holds one literal per argument, parsed according to Args.
	Values []string `yaml:"values,omitempty"`

	// Expect optionally names the result the call must produce; a mismatch
	// fails the run.
	Expect string `yaml:"expect,omitempty"`
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i := range m.Calls {
		c := &m.Calls[i]
		if c.Symbol == "" {
			return nil, fmt.Errorf("call #%d: symbol is required", i)
		}
		if c.Return == "" {
			c.Return = "void"
		}
		if _, err := typeByName(c.Return); err != nil {
			return nil, fmt.Errorf("call %s: %w", c.Symbol, err)
		}
		for _, a := range c.Args {
			if _, err := typeByName(a); err != nil {
				return nil, fmt.Errorf("call %s: %w", c.Symbol, err)
			}
		}
		if len(c.Values) != len(c.Args) {
			return nil, fmt.Errorf("call %s: %d values for %d args", c.Symbol, len(c.Values), len(c.Args))
		}
		if c.Fixed < 0 || c.Fixed > len(c.Args) {
			return nil, fmt.Errorf("call %s: fixed %d out of range", c.Symbol, c.Fixed)
		}
	}
	return &m, nil
}

func typeByName(name string) (ffi.Type, error) {
	switch name {
	case "void":
		return ffi.Void, nil
	case "uint8":
		return ffi.Uint8, nil
	case "sint8", "int8":
		return ffi.Sint8, nil
	case "uint16":
		return ffi.Uint16, nil
	case "sint16", "int16":
		return ffi.Sint16, nil
	case "uint32":
		return ffi.Uint32, nil
	case "sint32", "int32", "int":
		return ffi.Sint32, nil
	case "uint64", "size_t":
		return ffi.Uint64, nil
	case "sint64", "int64":
		return ffi.Sint64, nil
	case "float":
		return ffi.Float, nil
	case "double":
		return ffi.Double, nil
	case "pointer", "string":
		return ffi.Pointer, nil
	default:
		return ffi.Type{}, fmt.Errorf("unknown type %q", name)
	}
}

// argSlot owns the storage behind one argument value pointer. The hold
// field keeps the Go allocations reachable for the duration of the call.
type argSlot struct {
	ptr  unsafe.Pointer
	hold any
}

func buildSlot(typeName, literal string) (argSlot, error) {
	switch typeName {
	case "uint8", "uint16", "uint32", "uint64", "size_t":
		v, err := strconv.ParseUint(literal, 0, 64)
		if err != nil {
			return argSlot{}, fmt.Errorf("parse %q as %s: %w", literal, typeName, err)
		}
		return unsignedSlot(typeName, v), nil
	case "sint8", "int8", "sint16", "int16", "sint32", "int32", "int", "sint64", "int64":
		v, err := strconv.ParseInt(literal, 0, 64)
		if err != nil {
			return argSlot{}, fmt.Errorf("parse %q as %s: %w", literal, typeName, err)
		}
		return signedSlot(typeName, v), nil
	case "float":
		v, err := strconv.ParseFloat(literal, 32)
		if err != nil {
			return argSlot{}, fmt.Errorf("parse %q as float: %w", literal, err)
		}
		f := float32(v)
		return argSlot{ptr: unsafe.Pointer(&f), hold: &f}, nil
	case "double":
		v, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return argSlot{}, fmt.Errorf("parse %q as double: %w", literal, err)
		}
		return argSlot{ptr: unsafe.Pointer(&v), hold: &v}, nil
	case "string", "pointer":
		buf := append([]byte(literal), 0)
		p := unsafe.Pointer(&buf[0])
		holder := &p
		return argSlot{ptr: unsafe.Pointer(holder), hold: []any{buf, holder}}, nil
	default:
		return argSlot{}, fmt.Errorf("unknown type %q", typeName)
	}
}

func unsignedSlot(typeName string, v uint64) argSlot {
	switch typeName {
	case "uint8":
		x := uint8(v)
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	case "uint16":
		x := uint16(v)
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	case "uint32":
		x := uint32(v)
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	default:
		x := v
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	}
}

func signedSlot(typeName string, v int64) argSlot {
	switch typeName {
	case "sint8", "int8":
		x := int8(v)
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	case "sint16", "int16":
		x := int16(v)
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	case "sint32", "int32", "int":
		x := int32(v)
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	default:
		x := v
		return argSlot{ptr: unsafe.Pointer(&x), hold: &x}
	}
}
