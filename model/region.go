package model

import "math"

// RegionBounds is an inclusive span of song positions in ms.
type RegionBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var InvalidRegion = RegionBounds{Min: math.MaxInt, Max: math.MinInt}

func NewRegion(min, max int) RegionBounds {
	if min > max {
		return InvalidRegion
	}
	return RegionBounds{Min: min, Max: max}
}

func (r RegionBounds) IsValid() bool {
	return r.Min <= r.Max
}

func (r RegionBounds) Contains(pos int) bool {
	return r.IsValid() && pos >= r.Min && pos <= r.Max
}

func (r RegionBounds) Intersects(other RegionBounds) bool {
	if !r.IsValid() || !other.IsValid() {
		return false
	}
	return r.Min <= other.Max && other.Min <= r.Max
}

// MergeWith returns the smallest region covering both.
func (r RegionBounds) MergeWith(other RegionBounds) RegionBounds {
	if !r.IsValid() {
		return other
	}
	if !other.IsValid() {
		return r
	}
	return RegionBounds{Min: min(r.Min, other.Min), Max: max(r.Max, other.Max)}
}
