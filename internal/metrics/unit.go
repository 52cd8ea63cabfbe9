package metrics

import (
	"fmt"
	"strings"
)

// Unit scales nanosecond durations into a display unit by a fixed factor.
type Unit struct {
	Name   string
	Factor float64 // multiply nanoseconds by this factor
}

var (
	UnitNS = Unit{Name: "ns", Factor: 1.0}
	UnitMS = Unit{Name: "ms", Factor: 1e-6}
	UnitS  = Unit{Name: "s", Factor: 1e-9}
)

// ParseUnit converts a flag value to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "ns":
		return UnitNS, nil
	case "ms":
		return UnitMS, nil
	case "s":
		return UnitS, nil
	default:
		return Unit{}, fmt.Errorf("invalid unit: %q (expected: ns|ms|s)", s)
	}
}
