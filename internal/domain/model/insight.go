package model

import "github.com/okian/matchpulse/internal/domain/types"

// TransitionKind classifies a zone change.
type TransitionKind string

const (
	TransitionCarry   TransitionKind = "carry"
	TransitionPass    TransitionKind = "pass"
	TransitionUnknown TransitionKind = "unknown"
)

// HubRank is one entry of the hub top-N ranking.
type HubRank struct {
	Track int     `json:"track"`
	Score float64 `json:"score"`
}

// InsightFrame is the derived, read-only record computed per consumed
// snapshot.
type InsightFrame struct {
	RenderTime     int64                    `json:"render_time_ms"`
	BallZone       int                      `json:"ball_zone"`
	BallLane       int                      `json:"ball_lane"`
	Pressure       float64                  `json:"pressure"` // [0,1]
	LaneLoad       [types.ZoneLanes]float64 `json:"lane_load"`
	LastTransition TransitionKind           `json:"last_transition"`
	TopHubs        []HubRank                `json:"top_hubs"`
	Concentration  float64                  `json:"concentration"` // Gini over hub scores
	Flags          []string                 `json:"flags,omitempty"`
}

// MinuteAggregate buckets running totals by floor(time_ms / 60000).
type MinuteAggregate struct {
	Minute      int     `json:"minute"`
	Snapshots   int     `json:"snapshots"`
	PressureSum float64 `json:"pressure_sum"`
	SpeedSum    float64 `json:"speed_sum"`
	Transitions int     `json:"transitions"`
}

// TransitionMatrix counts classified zone transitions [from][to].
type TransitionMatrix [types.ZoneCount][types.ZoneCount]int

// MatchReport is emitted once on the first terminal event marker.
type MatchReport struct {
	Minutes       []MinuteAggregate `json:"minutes"`
	TransitionsA  TransitionMatrix  `json:"transitions_a"`
	TransitionsB  TransitionMatrix  `json:"transitions_b"`
	TopHubs       []HubRank         `json:"top_hubs"`
	Concentration float64           `json:"concentration"`
	MeanPressure  float64           `json:"mean_pressure"`
	MeanSpeed     float64           `json:"mean_speed"`
}
