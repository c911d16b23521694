// Package ffi exposes the low-level libffi primitives: building a call
// interface (CIF) from runtime type descriptors, dispatching foreign calls
// through it, and synthesizing native callable closures backed by Go
// callbacks with captured user data.
//
// This is the unsafe primitive layer. It validates type descriptors and ABI
// tags once, at build or preparation time, and performs no checking on the
// call path: an argument list that does not match the CIF, a call through a
// freed closure, or a descriptor released while a CIF still references it is
// undefined behavior, not a reported error. Callers wanting guard rails
// should build a safe wrapper on top of these operations.
//
// A successfully prepared CIF is immutable and may be shared freely across
// goroutines, both for calls and for closure preparations. A prepared
// closure may be invoked concurrently; each invocation receives its own call
// frame. Preparing or freeing a closure must not race with an in-flight
// invocation of the same closure.
package ffi
