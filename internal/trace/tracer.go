package trace

import "sync"

// DefaultProgramName labels the whole-run program span when no explicit
// name is given.
const DefaultProgramName = "entire_run"

// Tracer owns the span ledger for one run. Construct one explicitly at run
// start and Save it at run end; there is no ambient process-wide instance.
//
// Concurrent recorders are safe: a single mutex serializes every append, so
// ledger order is completion order (lock-acquisition order), not start
// order. Nothing else is locked; a recorder blocked inside the measured
// work holds no lock.
type Tracer struct {
	runID  string
	outDir string

	mu    sync.Mutex
	spans []Span
}

// New creates a tracer for one run. runID names the export files written by
// Save and outDir is where they land; both fall back to defaults when
// empty.
func New(runID, outDir string) *Tracer {
	if runID == "" {
		runID = "run"
	}
	if outDir == "" {
		outDir = "traces"
	}
	return &Tracer{runID: runID, outDir: outDir}
}

// RunID returns the run identifier used for export file names.
func (t *Tracer) RunID() string { return t.runID }

// OutDir returns the export directory.
func (t *Tracer) OutDir() string { return t.outDir }

// record appends a completed span to the ledger. This is the only locked
// section of the capture path.
func (t *Tracer) record(s Span) {
	if s.Meta == nil {
		s.Meta = Meta{}
	}
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
}

// Snapshot returns a copy of the ledger in completion order.
func (t *Tracer) Snapshot() []Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Len reports the number of recorded spans.
func (t *Tracer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}
