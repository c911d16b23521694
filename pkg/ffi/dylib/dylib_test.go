package dylib_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/libffi-go/pkg/ffi"
	"github.com/coinbase/libffi-go/pkg/ffi/dylib"
)

func TestSelfSymbol(t *testing.T) {
	lib, err := dylib.Self()
	require.NoError(t, err)
	defer func() {
		_ = lib.Close()
	}()

	assert.Equal(t, "self", lib.Path())

	sym, err := lib.Symbol("strlen")
	require.NoError(t, err)
	assert.NotNil(t, sym)
}

func TestSymbolUnknown(t *testing.T) {
	lib, err := dylib.Self()
	require.NoError(t, err)
	defer func() {
		_ = lib.Close()
	}()

	_, err = lib.Symbol("definitely_not_a_symbol_3f9c")
	require.Error(t, err)
}

func TestOpenMissingLibrary(t *testing.T) {
	_, err := dylib.Open("libdoesnotexist-3f9c.so")
	require.Error(t, err)
}

func TestCloseTwice(t *testing.T) {
	lib, err := dylib.Self()
	require.NoError(t, err)

	require.NoError(t, lib.Close())
	require.ErrorIs(t, lib.Close(), dylib.ErrLibraryClosed)

	_, err = lib.Symbol("strlen")
	require.ErrorIs(t, err, dylib.ErrLibraryClosed)
}

func TestDispatchStrlen(t *testing.T) {
	lib, err := dylib.Self()
	require.NoError(t, err)
	defer func() {
		_ = lib.Close()
	}()

	strlen, err := lib.Symbol("strlen")
	require.NoError(t, err)

	cif, err := ffi.PrepCIF(ffi.DefaultABI, ffi.Uint64, ffi.Pointer)
	require.NoError(t, err)
	defer cif.Free()

	s := []byte("dispatch\x00")
	p := unsafe.Pointer(&s[0])

	got := ffi.CallValue[uint64](cif, strlen, unsafe.Pointer(&p))
	assert.Equal(t, uint64(8), got)
}
