package ffi_test

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/libffi-go/pkg/ffi"
)

func TestPrepCIF(t *testing.T) {
	cif, err := ffi.PrepCIF(ffi.DefaultABI, ffi.Uint64, ffi.Uint64)
	require.NoError(t, err)
	defer cif.Free()

	assert.Equal(t, 1, cif.ArgCount())
	assert.Equal(t, 1, cif.FixedArgCount())
	assert.False(t, cif.Variadic())
	assert.Equal(t, ffi.DefaultABI, cif.ABI())
	assert.Equal(t, ffi.Uint64.Raw(), cif.ReturnType().Raw())

	atypes := cif.ArgTypes()
	require.Len(t, atypes, 1)
	assert.Equal(t, ffi.Uint64.Raw(), atypes[0].Raw())
}

func TestPrepCIFBadAbi(t *testing.T) {
	cif, err := ffi.PrepCIF(ffi.ABI(1<<20), ffi.Uint64, ffi.Uint64)
	require.ErrorIs(t, err, ffi.ErrBadAbi)
	assert.Nil(t, cif)
}

// rawFFIType mirrors libffi's ffi_type layout, standing in for an external
// collaborator that hands the builder a descriptor reference.
type rawFFIType struct {
	size      uintptr
	alignment uint16
	typ       uint16
	elements  *unsafe.Pointer
}

const rawTypeStruct = 13 // FFI_TYPE_STRUCT kind tag

func TestPrepCIFBadTypedef(t *testing.T) {
	// A struct descriptor with no element list cannot be laid out.
	bad := &rawFFIType{typ: rawTypeStruct}

	cif, err := ffi.PrepCIF(ffi.DefaultABI, ffi.TypeAt(unsafe.Pointer(bad)), ffi.Uint64)
	require.ErrorIs(t, err, ffi.ErrBadTypedef)
	assert.Nil(t, cif)
	runtime.KeepAlive(bad)
}

func TestPrepCIFBadTypedefArgument(t *testing.T) {
	bad := &rawFFIType{typ: rawTypeStruct}

	cif, err := ffi.PrepCIF(ffi.DefaultABI, ffi.Uint64, ffi.TypeAt(unsafe.Pointer(bad)))
	require.ErrorIs(t, err, ffi.ErrBadTypedef)
	assert.Nil(t, cif)
	runtime.KeepAlive(bad)
}

func TestPrepCIFErrorText(t *testing.T) {
	_, err := ffi.PrepCIF(ffi.ABI(1<<20), ffi.Uint64)
	require.Error(t, err)

	var ffiErr *ffi.Error
	require.ErrorAs(t, err, &ffiErr)
	assert.Equal(t, "PrepCIF", ffiErr.Op)
	assert.Contains(t, err.Error(), "ffi.PrepCIF")
}

func TestPrepCIFVar(t *testing.T) {
	cif, err := ffi.PrepCIFVar(ffi.DefaultABI, 3, ffi.Sint32,
		ffi.Pointer, ffi.Uint64, ffi.Pointer, ffi.Sint32, ffi.Sint32)
	require.NoError(t, err)
	defer cif.Free()

	assert.Equal(t, 5, cif.ArgCount())
	assert.Equal(t, 3, cif.FixedArgCount())
	assert.True(t, cif.Variadic())
}

func TestPrepCIFVarFixedCountOutOfRange(t *testing.T) {
	_, err := ffi.PrepCIFVar(ffi.DefaultABI, 3, ffi.Sint32, ffi.Sint32, ffi.Sint32)
	require.Error(t, err)

	_, err = ffi.PrepCIFVar(ffi.DefaultABI, -1, ffi.Sint32, ffi.Sint32, ffi.Sint32)
	require.Error(t, err)
}
