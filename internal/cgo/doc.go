// Package cgo contains all CGO bindings to the native libffi library.
//
// # Design Principles
//
// 1. Isolation: ALL CGO code lives in this package. No other package should
//    import "C". This minimizes CGO overhead and makes the codebase easier to
//    maintain.
//
// 2. Minimal Surface: Expose only the low-level libffi primitives (prep_cif,
//    prep_cif_var, ffi_call, closure alloc/prep/free) plus the dynamic loader
//    helpers the rest of the module needs.
//
// 3. Error Handling: ffi_status codes are surfaced as Status values and
//    translated into Go errors by pkg/ffi. Everything libffi treats as
//    undefined behavior stays undefined behavior here; no call-time checks
//    are added on the dispatch path.
//
// 4. Memory Management: Call interfaces and closures own C-allocated control
//    blocks with explicit Free functions. ffi_type descriptors are only ever
//    referenced, never copied or freed.
//
// # Memory Layout
//
// Native objects are wrapped as opaque handles around C pointers. The raw
// pointers never leave this package except as unsafe.Pointer entry points
// that the caller treats as opaque.
//
// # Threading
//
// A prepared CIF or closure may be used from any number of goroutines
// concurrently. Preparing or freeing a closure must not race with an
// in-flight invocation of it; that synchronization is a caller obligation.
package cgo
