// Package logging provides a minimal logging facade for the libffi-go
// wrapper.
//
// This package defines a Logger interface that wraps a subset of the
// standard library's log/slog functionality. The interface is intentionally
// small to allow applications to provide custom implementations for testing
// or integration with existing logging systems.
//
// # Logger Interface
//
// The Logger interface provides context-aware logging methods:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// # Default Implementation
//
// The package provides a default slog-backed implementation:
//
//	import (
//	    "log/slog"
//	    "github.com/coinbase/libffi-go/pkg/ffi/logging"
//	)
//
//	// Use default logger (slog.Default())
//	logger := logging.New(nil)
//
//	// Use custom slog.Logger
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	customLogger := logging.New(slog.New(handler))
//
// # Address Attributes
//
// Native addresses (entry points, library handles) should be logged with
// logging.Addr so they render as hex:
//
//	logger.Debug(ctx, "closure prepared", logging.Addr("code", uintptr(code)))
//
// The dispatch path itself never logs; only lifecycle operations (library
// open/close, smoke harness runs) go through this facade.
package logging
