// Command ffigo-smoke drives foreign calls described by a YAML manifest
// through the ffi package and reports the results. It doubles as a quick
// way to check that libffi, the dynamic loader, and the dispatcher agree on
// a machine before shipping anything that depends on them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"unsafe"

	"github.com/mattn/go-isatty"

	"github.com/coinbase/libffi-go/pkg/ffi"
	"github.com/coinbase/libffi-go/pkg/ffi/dylib"
	"github.com/coinbase/libffi-go/pkg/ffi/logging"
)

func main() {
	manifestPath := flag.String("manifest", "smoke.yaml", "path to the smoke manifest")
	verbose := flag.Bool("v", false, "log every call at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := logging.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*manifestPath, log); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", marker(false), err)
		os.Exit(1)
	}
}

func run(manifestPath string, log logging.Logger) error {
	ctx := context.Background()

	m, err := LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	lib, err := openLibrary(m.Library, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := lib.Close(); cerr != nil {
			log.Warn(ctx, "close library", "error", cerr)
		}
	}()

	log.Info(ctx, "smoke run", "library", lib.Path(), "calls", len(m.Calls))

	failed := 0
	for i, call := range m.Calls {
		result, err := perform(lib, call)
		switch {
		case err != nil:
			failed++
			fmt.Printf("%s %s: %v\n", marker(false), call.Symbol, err)
		case call.Expect != "" && result != call.Expect:
			failed++
			fmt.Printf("%s %s = %s, want %s\n", marker(false), call.Symbol, result, call.Expect)
		default:
			fmt.Printf("%s %s = %s\n", marker(true), call.Symbol, result)
		}
		log.Debug(ctx, "call done", "index", i, "symbol", call.Symbol, "result", result)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d calls failed", failed, len(m.Calls))
	}
	return nil
}

func openLibrary(path string, log logging.Logger) (*dylib.Library, error) {
	if path == "" {
		return dylib.Self(dylib.WithLogger(log))
	}
	return dylib.Open(path, dylib.WithLogger(log))
}

func perform(lib *dylib.Library, call CallSpec) (string, error) {
	fn, err := lib.Symbol(call.Symbol)
	if err != nil {
		return "", err
	}

	rtype, err := typeByName(call.Return)
	if err != nil {
		return "", err
	}
	atypes := make([]ffi.Type, len(call.Args))
	for i, name := range call.Args {
		if atypes[i], err = typeByName(name); err != nil {
			return "", err
		}
	}

	var cif *ffi.CIF
	if call.Fixed > 0 && call.Fixed < len(call.Args) {
		cif, err = ffi.PrepCIFVar(ffi.DefaultABI, call.Fixed, rtype, atypes...)
	} else {
		cif, err = ffi.PrepCIF(ffi.DefaultABI, rtype, atypes...)
	}
	if err != nil {
		return "", err
	}
	defer cif.Free()

	slots := make([]argSlot, len(call.Args))
	args := make([]unsafe.Pointer, len(call.Args))
	for i := range call.Args {
		if slots[i], err = buildSlot(call.Args[i], call.Values[i]); err != nil {
			return "", err
		}
		args[i] = slots[i].ptr
	}

	result := dispatch(cif, fn, call.Return, args)
	runtime.KeepAlive(slots)
	return result, nil
}

func dispatch(cif *ffi.CIF, fn unsafe.Pointer, returnType string, args []unsafe.Pointer) string {
	switch returnType {
	case "void":
		var word uint64
		cif.Call(fn, unsafe.Pointer(&word), args...)
		return "void"
	case "float":
		return strconv.FormatFloat(float64(ffi.CallValue[float32](cif, fn, args...)), 'g', -1, 32)
	case "double":
		return strconv.FormatFloat(ffi.CallValue[float64](cif, fn, args...), 'g', -1, 64)
	case "pointer", "string":
		return fmt.Sprintf("0x%x", ffi.CallValue[uintptr](cif, fn, args...))
	case "sint8", "int8", "sint16", "int16", "sint32", "int32", "int", "sint64", "int64":
		return strconv.FormatInt(ffi.CallValue[int64](cif, fn, args...), 10)
	default:
		return strconv.FormatUint(ffi.CallValue[uint64](cif, fn, args...), 10)
	}
}

func marker(ok bool) string {
	colored := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	switch {
	case ok && colored:
		return "\x1b[32mPASS\x1b[0m"
	case ok:
		return "PASS"
	case colored:
		return "\x1b[31mFAIL\x1b[0m"
	default:
		return "FAIL"
	}
}
