// Package types contains common value types shared across the pipeline.
package types

import "math"

// Pitch and grid dimensions.
const (
	// PitchLengthM and PitchWidthM are the field dimensions in meters.
	PitchLengthM = 105.0
	PitchWidthM  = 68.0

	// PressureCols and PressureRows describe the coarse pressure grid.
	PressureCols = 28
	PressureRows = 18

	// ZoneQuarters and ZoneLanes quantize the pitch into 20 zones.
	ZoneQuarters = 4
	ZoneLanes    = 5
	ZoneCount    = ZoneQuarters * ZoneLanes
)

// Track id layout: 0-10 team A, 11-21 team B. The partition is load-bearing
// for team attribution and transition-matrix selection.
const (
	TeamSize    = 11
	EntityCount = 2 * TeamSize

	// NoTrack marks an absent possessor or target.
	NoTrack = -1
)

// Team identifies one of the two sides, or neither.
type Team int

const (
	TeamUnknown Team = iota
	TeamA
	TeamB
)

// String implements fmt.Stringer.
func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	default:
		return "unknown"
	}
}

// ValidTrack reports whether id is a valid on-pitch track id.
func ValidTrack(id int) bool {
	return id >= 0 && id < EntityCount
}

// TeamOf maps a track id to its team.
func TeamOf(id int) Team {
	switch {
	case id >= 0 && id < TeamSize:
		return TeamA
	case id >= TeamSize && id < EntityCount:
		return TeamB
	default:
		return TeamUnknown
	}
}

// Vec3 is a position or velocity in pitch coordinates.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistXY returns the planar distance between v and o.
func (v Vec3) DistXY(o Vec3) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsZero reports whether v is the zero-vector sentinel.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
