// Package model defines the shared data model of a formulation search:
// component specifications, group constraints and the immutable
// SearchRequest consumed by the engine.
package model
