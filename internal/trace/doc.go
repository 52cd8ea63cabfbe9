// Package trace provides the span capture engine for tracekit.
//
// A Tracer owns the ledger of completed spans for one run. Spans measure
// wall-clock and process CPU time across an extent of work, opened either
// as an explicit scope or by wrapping an existing callable:
//
//	tracer := trace.New("run_1", "traces")
//	defer tracer.Save()
//
//	prog := tracer.Program("", nil)
//	defer prog.End()
//
//	fetch := tracer.Instrument("Store.Fetch", store.Fetch, nil).(func(int) int)
//
// # Instrumentation registry
//
// A Registry bulk-attaches span recording to the members of a type or to a
// set of named functions without editing call sites. Bindings live in an
// explicit map keyed by "Owner.member"; call sites dispatch through the
// registry (Func, Call, or a live Handle), and Restore rebinds the saved
// originals in reverse install order.
//
// # Export
//
// Save flushes a ledger snapshot to three equivalent files: a tabular CSV,
// a JSON array, and a versioned msgpack snapshot. Export never clears or
// mutates the ledger.
package trace
