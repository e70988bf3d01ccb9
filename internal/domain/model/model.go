// Package model contains domain records passed between pipeline layers.
package model

import "github.com/okian/matchpulse/internal/domain/types"

// PackedFloatsPerEntity is the stride of the packed tick shape: x, y, vx, vy.
const PackedFloatsPerEntity = 4

// BallSample is the ball record carried by a tick.
type BallSample struct {
	Pos       types.Vec3
	Vel       *types.Vec3 // nil when the producer did not supply a velocity
	Possessor int         // track id or types.NoTrack
}

// EntitySample is one per-entity record carried by a tick.
type EntitySample struct {
	Track   int
	Pos     types.Vec3
	Vel     types.Vec3
	State   string
	Stamina float64
}

// Aux carries per-tick scalar fields that are copied, never interpolated.
type Aux struct {
	// PressureA and PressureB are coarse occupancy-pressure grids, one per
	// team, in row-major PressureCols x PressureRows order. May be nil when
	// the producer has not published a grid yet.
	PressureA []float64
	PressureB []float64

	// Counters holds free-form debug counters from the simulator.
	Counters map[string]float64
}

// Tick is one irregular-rate update from the simulator. Exactly one of
// Entities or Packed carries the player payload; the ingestor normalizes the
// shape at the boundary.
type Tick struct {
	Timestamp int64 // milliseconds
	Ball      BallSample
	Entities  []EntitySample // per-entity shape
	Packed    []float64      // packed shape: PackedFloatsPerEntity floats per track
	Events    []RawEvent
	Aux       *Aux // nil when the tick carries no auxiliary fields
}

// Shape names the two accepted wire shapes.
type Shape int

const (
	ShapeNone Shape = iota
	ShapePerEntity
	ShapePacked
)

// Shape reports which payload variant the tick carries.
func (t *Tick) Shape() Shape {
	switch {
	case len(t.Entities) > 0:
		return ShapePerEntity
	case len(t.Packed) > 0:
		return ShapePacked
	default:
		return ShapeNone
	}
}

// Priority is the AOI tier annotated on snapshot entities.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
)

// BallState is the composed ball record inside a snapshot.
type BallState struct {
	Pos   types.Vec3 `json:"pos"`
	Owner int        `json:"owner"`
	Speed float64    `json:"speed"` // derived from consecutive samples, units/s
}

// EntityState is one composed entity record inside a snapshot.
type EntityState struct {
	Track    int        `json:"track"`
	Pos      types.Vec3 `json:"pos"`
	Vel      types.Vec3 `json:"vel"`
	State    string     `json:"state"`
	Stamina  float64    `json:"stamina"`
	Priority Priority   `json:"priority"`
	Name     string     `json:"name,omitempty"`
	Kit      int        `json:"kit,omitempty"`
}

// Snapshot is the immutable composite published to all consumers. Consumers
// may read but never write it back.
type Snapshot struct {
	RenderTime int64                          `json:"render_time_ms"`
	Ball       BallState                      `json:"ball"`
	Entities   [types.EntityCount]EntityState `json:"entities"`
	Aux        *Aux                           `json:"-"`
	Events     []Event                        `json:"events,omitempty"`
}

// RosterEntry labels one track id.
type RosterEntry struct {
	Name     string `json:"name"`
	Kit      int    `json:"kit"`
	Position string `json:"position"`
}

// Roster maps track ids to labels. Replaced wholesale between matches.
type Roster map[int]RosterEntry
