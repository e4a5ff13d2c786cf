package queue

import (
	"fmt"
	"strings"
)

// StateReductionMode selects the ordering policy of a RenderQueue.
type StateReductionMode int

const (
	// ReductionNone orders by priority and distance only.
	ReductionNone StateReductionMode = iota
	// ReductionMaterial groups draws sharing a shader and pass before
	// looking at distance.
	ReductionMaterial
	// ReductionDistance orders by distance first and groups by shader only
	// among equally distant draws.
	ReductionDistance
)

func (m StateReductionMode) String() string {
	switch m {
	case ReductionNone:
		return "none"
	case ReductionMaterial:
		return "material"
	case ReductionDistance:
		return "distance"
	default:
		return fmt.Sprintf("StateReductionMode(%d)", int(m))
	}
}

func ParseStateReductionMode(s string) (StateReductionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return ReductionNone, nil
	case "material":
		return ReductionMaterial, nil
	case "distance":
		return ReductionDistance, nil
	default:
		return 0, fmt.Errorf("unknown state reduction mode %q", s)
	}
}
