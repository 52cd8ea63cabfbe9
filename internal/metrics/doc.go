// Package metrics compiles per-operation and run-level statistics from an
// exported trace file.
//
// The compiler is a single-pass batch: LoadRows parses one export (CSV or
// binary snapshot) strictly, Compute aggregates api rows by label and
// derives the run summary, and the render/report functions turn the result
// into console tables, a markdown report, and a pair of CSV reports. No
// state survives between invocations.
package metrics
