// This file implements the fluent request builder. The builder is immutable:
// each method returns a new builder with the updated configuration.

package mixgo

import "github.com/formlab/mixgo/model"

// Request creates a new immutable request builder.
//
// Example:
//
//	runner, err := mixgo.Request().
//	    Component("water", "solvent", 0.4, 0.8, 0.01).
//	    Component("glycerin", "humectant", 0, 0.3, 0.01).
//	    FixedComponent("preservative", "additive", 0.01).
//	    GroupMaxMass("humectant", 0.35).
//	    Total(0.99, 1.01).
//	    Build()
func Request() RequestBuilder {
	return RequestBuilder{
		minTotal: 1.0,
		maxTotal: 1.0,
	}
}

// RequestBuilder is an immutable fluent builder for search requests.
// Each method returns a new builder with the updated configuration.
type RequestBuilder struct {
	components []model.ComponentSpec
	groups     map[string]model.GroupConstraint
	minTotal   float64
	maxTotal   float64
	epsilon    float64
	maxStored  int
	options    []Option
}

// Component appends a ranged component. Order matters: it defines the
// column position in results and exports.
func (b RequestBuilder) Component(name, group string, min, max, step float64) RequestBuilder {
	b.components = appendComponent(b.components, model.ComponentSpec{
		Name: name, Group: group, Min: min, Max: max, Step: step,
	})
	return b
}

// FixedComponent appends a component pinned to a single value.
func (b RequestBuilder) FixedComponent(name, group string, value float64) RequestBuilder {
	b.components = appendComponent(b.components, model.ComponentSpec{
		Name: name, Group: group, Fixed: Float64(value),
	})
	return b
}

// Group sets the full constraint for a group, replacing any previous one.
func (b RequestBuilder) Group(name string, gc GroupConstraint) RequestBuilder {
	return b.mergeGroup(name, func(model.GroupConstraint) model.GroupConstraint { return gc })
}

// GroupMinMass constrains the group's summed mass from below.
func (b RequestBuilder) GroupMinMass(name string, min float64) RequestBuilder {
	return b.mergeGroup(name, func(gc model.GroupConstraint) model.GroupConstraint {
		gc.MinMass = Float64(min)
		return gc
	})
}

// GroupMaxMass constrains the group's summed mass from above.
func (b RequestBuilder) GroupMaxMass(name string, max float64) RequestBuilder {
	return b.mergeGroup(name, func(gc model.GroupConstraint) model.GroupConstraint {
		gc.MaxMass = Float64(max)
		return gc
	})
}

// GroupFixedMass pins the group's summed mass to a single value.
// A fixed mass dominates any min/max mass bound on the same group.
func (b RequestBuilder) GroupFixedMass(name string, mass float64) RequestBuilder {
	return b.mergeGroup(name, func(gc model.GroupConstraint) model.GroupConstraint {
		gc.FixedMass = Float64(mass)
		return gc
	})
}

// GroupMinCount requires at least n components of the group to be nonzero.
func (b RequestBuilder) GroupMinCount(name string, n uint32) RequestBuilder {
	return b.mergeGroup(name, func(gc model.GroupConstraint) model.GroupConstraint {
		gc.MinCount = Uint32(n)
		return gc
	})
}

// GroupMaxCount allows at most n components of the group to be nonzero.
func (b RequestBuilder) GroupMaxCount(name string, n uint32) RequestBuilder {
	return b.mergeGroup(name, func(gc model.GroupConstraint) model.GroupConstraint {
		gc.MaxCount = Uint32(n)
		return gc
	})
}

// Total sets the inclusive bounds on the tuple sum.
// Default: exactly 1.0 (a mixture).
func (b RequestBuilder) Total(min, max float64) RequestBuilder {
	b.minTotal = min
	b.maxTotal = max
	return b
}

// ExactTotal requires the tuple sum to equal total within epsilon.
func (b RequestBuilder) ExactTotal(total float64) RequestBuilder {
	return b.Total(total, total)
}

// Epsilon sets the numeric tolerance for sum and mass comparisons.
// Zero means DefaultEpsilon.
func (b RequestBuilder) Epsilon(e float64) RequestBuilder {
	b.epsilon = e
	return b
}

// MaxStoredResults caps retained rows per worker. Zero means unlimited.
func (b RequestBuilder) MaxStoredResults(n int) RequestBuilder {
	b.maxStored = n
	return b
}

// Options appends runner options applied at Build time.
func (b RequestBuilder) Options(optFns ...Option) RequestBuilder {
	b.options = append(b.options[:len(b.options):len(b.options)], optFns...)
	return b
}

// Request assembles the search request without validating it.
func (b RequestBuilder) Request() SearchRequest {
	req := model.SearchRequest{
		Components:       append([]model.ComponentSpec(nil), b.components...),
		MinTotal:         b.minTotal,
		MaxTotal:         b.maxTotal,
		Epsilon:          b.epsilon,
		MaxStoredResults: b.maxStored,
	}
	if len(b.groups) > 0 {
		req.Groups = make(map[string]model.GroupConstraint, len(b.groups))
		for k, v := range b.groups {
			req.Groups[k] = v
		}
	}
	return req
}

// Build validates the request and constructs a Runner.
func (b RequestBuilder) Build() (*Runner, error) {
	return New(b.Request(), b.options...)
}

func (b RequestBuilder) mergeGroup(name string, fn func(model.GroupConstraint) model.GroupConstraint) RequestBuilder {
	groups := make(map[string]model.GroupConstraint, len(b.groups)+1)
	for k, v := range b.groups {
		groups[k] = v
	}
	groups[name] = fn(groups[name])
	b.groups = groups
	return b
}

// appendComponent copies-on-write so two builders derived from the same
// parent never share a backing array.
func appendComponent(components []model.ComponentSpec, c model.ComponentSpec) []model.ComponentSpec {
	out := make([]model.ComponentSpec, len(components), len(components)+1)
	copy(out, components)
	return append(out, c)
}
