package trace

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a recorded span.
type Kind uint8

const (
	// KindAPI marks a span recorded around one instrumented operation.
	KindAPI Kind = iota + 1 // instrumented API call
	// KindProgram marks the whole-run scope.
	KindProgram // run-level scope
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindProgram:
		return "program"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "api":
		return KindAPI, nil
	case "program":
		return KindProgram, nil
	default:
		return 0, fmt.Errorf("invalid span kind: %q (expected: api|program)", s)
	}
}

// MarshalJSON encodes the kind as its string form.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the kind from its string form.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Meta carries open key/value annotations attached to a span. Values are
// opaque to the toolkit: every component only round-trips them.
type Meta map[string]string

// Span is one completed timed extent of work. Spans are immutable once
// appended to the ledger.
type Span struct {
	Kind       Kind   `json:"kind" msgpack:"kind"`
	Name       string `json:"name" msgpack:"name"`
	StartNS    int64  `json:"start_ns" msgpack:"start_ns"`
	EndNS      int64  `json:"end_ns" msgpack:"end_ns"`
	WallNS     int64  `json:"wall_ns" msgpack:"wall_ns"`
	CPUStartNS int64  `json:"cpu_start_ns" msgpack:"cpu_start_ns"`
	CPUEndNS   int64  `json:"cpu_end_ns" msgpack:"cpu_end_ns"`
	CPUNS      int64  `json:"cpu_ns" msgpack:"cpu_ns"`
	Meta       Meta   `json:"meta" msgpack:"meta"`
}
