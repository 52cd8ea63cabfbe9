package trace

import "maps"

// Scope measures one extent of work. Begin captures the wall and CPU
// clocks; End computes the deltas and appends exactly one span to the
// ledger. A Scope is used by a single goroutine.
type Scope struct {
	tracer    *Tracer
	kind      Kind
	name      string
	meta      Meta
	startWall int64
	startCPU  int64
	done      bool
}

// Begin opens a scope of the given kind and label. The usual shape is
//
//	sc := t.Begin(trace.KindAPI, "Store.Fetch", nil)
//	defer sc.End()
//
// so the span is recorded on every exit path, panics included.
func (t *Tracer) Begin(kind Kind, name string, meta Meta) *Scope {
	return &Scope{
		tracer:    t,
		kind:      kind,
		name:      name,
		meta:      meta,
		startWall: wallNow(),
		startCPU:  cpuNow(),
	}
}

// API opens an api-kind scope.
func (t *Tracer) API(name string, meta Meta) *Scope {
	return t.Begin(KindAPI, name, meta)
}

// Program opens the run-level scope. An empty name uses
// DefaultProgramName.
func (t *Tracer) Program(name string, meta Meta) *Scope {
	if name == "" {
		name = DefaultProgramName
	}
	return t.Begin(KindProgram, name, meta)
}

// End closes the scope and appends its span. Further calls are no-ops, so
// a deferred End alongside an explicit one stays safe.
func (s *Scope) End() {
	if s.done {
		return
	}
	s.done = true

	endWall := wallNow()
	endCPU := cpuNow()
	s.tracer.record(Span{
		Kind:       s.kind,
		Name:       s.name,
		StartNS:    s.startWall,
		EndNS:      endWall,
		WallNS:     endWall - s.startWall,
		CPUStartNS: s.startCPU,
		CPUEndNS:   endCPU,
		CPUNS:      endCPU - s.startCPU,
		Meta:       maps.Clone(s.meta),
	})
}
