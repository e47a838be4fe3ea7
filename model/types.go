package model

import "fmt"

// GroupID is a dense integer identifier for a component group.
//
// Group constraints are keyed by group name in a SearchRequest; names are
// interned into GroupIDs once at compile time so the enumeration hot loop
// never performs string lookups.
type GroupID int32

// ComponentSpec describes one dimension of the search: a named numeric
// quantity belonging to a group, discretized either to a single fixed value
// or to min..max sampled every step.
type ComponentSpec struct {
	Name  string   `json:"name"`
	Group string   `json:"group"`
	Min   float64  `json:"min"`
	Max   float64  `json:"max"`
	Step  float64  `json:"step"`
	Fixed *float64 `json:"fixed,omitempty"`
}

// IsFixed reports whether the component contributes a single value.
func (c ComponentSpec) IsFixed() bool { return c.Fixed != nil }

// String returns a short human-readable form for logs and errors.
func (c ComponentSpec) String() string {
	if c.Fixed != nil {
		return fmt.Sprintf("%s(=%g)", c.Name, *c.Fixed)
	}
	return fmt.Sprintf("%s(%g..%g/%g)", c.Name, c.Min, c.Max, c.Step)
}

// GroupConstraint holds the per-group aggregate rules. All fields are
// optional; a nil field means unconstrained. If FixedMass is set it
// dominates MaxMass for pruning (both bounds collapse to equality).
type GroupConstraint struct {
	MinMass   *float64 `json:"minMass,omitempty"`
	MaxMass   *float64 `json:"maxMass,omitempty"`
	FixedMass *float64 `json:"fixedMass,omitempty"`
	MinCount  *uint32  `json:"minCount,omitempty"`
	MaxCount  *uint32  `json:"maxCount,omitempty"`
}

// IsZero reports whether the constraint imposes nothing.
func (g GroupConstraint) IsZero() bool {
	return g.MinMass == nil && g.MaxMass == nil && g.FixedMass == nil &&
		g.MinCount == nil && g.MaxCount == nil
}

// DefaultEpsilon is the numeric tolerance applied to all sum and mass
// comparisons when a request does not set one.
const DefaultEpsilon = 1e-6

// SearchRequest is the immutable input of one enumeration run.
//
// Component order defines tuple position and recursion depth: dimension 0 is
// the most significant for the lexicographic output order and is the
// dimension sliced across workers.
type SearchRequest struct {
	Components []ComponentSpec            `json:"components"`
	Groups     map[string]GroupConstraint `json:"groups,omitempty"`
	MinTotal   float64                    `json:"minTotal"`
	MaxTotal   float64                    `json:"maxTotal"`
	Epsilon    float64                    `json:"epsilon,omitempty"`
	// MaxStoredResults caps retained rows per worker. Valid rows beyond the
	// cap are still counted but not retained. Zero means unlimited.
	MaxStoredResults int `json:"maxStoredResults,omitempty"`
}

// EffectiveEpsilon returns the request tolerance, falling back to
// DefaultEpsilon when unset.
func (r SearchRequest) EffectiveEpsilon() float64 {
	if r.Epsilon > 0 {
		return r.Epsilon
	}
	return DefaultEpsilon
}

// ComponentNames returns the component names in dimension order, used as the
// CSV header row on export.
func (r SearchRequest) ComponentNames() []string {
	names := make([]string, len(r.Components))
	for i, c := range r.Components {
		names[i] = c.Name
	}
	return names
}
