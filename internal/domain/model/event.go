package model

import (
	"fmt"
	"strings"

	"github.com/okian/matchpulse/internal/domain/types"
)

// Raw event times below this value are interpreted as match minutes; values
// at or above it are already milliseconds. A match never reaches 1000 minutes,
// but the reverse reading is lossy: a genuine millisecond stamp inside the
// first second of a match is misread as minutes. Producers that stamp in
// milliseconds must start their clock at or above the threshold (the synthetic
// feeder does). The ambiguity is in the feed contract, not resolvable here.
const minuteThreshold = 1000

// RawEvent is a heterogeneous event as delivered by the simulator. Time may
// be expressed in minutes or milliseconds; the collector normalizes it.
type RawEvent struct {
	Type    string
	Time    float64
	Actor   int
	Target  int // types.NoTrack when absent
	Pos     types.Vec3
	Payload string
}

// Event is the canonical normalized form used for identity and windowing.
type Event struct {
	Type    string     `json:"type"`
	TimeMS  int64      `json:"time_ms"`
	Actor   int        `json:"actor"`
	Target  int        `json:"target"`
	Pos     types.Vec3 `json:"pos"`
	Payload string     `json:"payload,omitempty"`
}

// Normalize converts a raw event into canonical form: time in milliseconds,
// lower-cased type, explicit actor/target fields.
func (r RawEvent) Normalize() Event {
	ms := r.Time
	if r.Time < minuteThreshold {
		ms = r.Time * 60_000
	}
	target := r.Target
	if !types.ValidTrack(target) {
		target = types.NoTrack
	}
	return Event{
		Type:    strings.ToLower(strings.TrimSpace(r.Type)),
		TimeMS:  int64(ms),
		Actor:   r.Actor,
		Target:  target,
		Pos:     r.Pos,
		Payload: r.Payload,
	}
}

// Valid reports whether the event is concrete enough to publish: it needs a
// type and at least one of actor, target, or a non-zero position.
func (e Event) Valid() bool {
	if e.Type == "" {
		return false
	}
	return types.ValidTrack(e.Actor) || types.ValidTrack(e.Target) || !e.Pos.IsZero()
}

// Key returns the identity key (type, time, actor, target). Two raw events
// that normalize to the same key are the same logical event regardless of
// payload.
func (e Event) Key() string {
	return fmt.Sprintf("%s|%d|%d|%d", e.Type, e.TimeMS, e.Actor, e.Target)
}

// Terminal event types that close out a match and trigger the one-shot report.
var terminalEventTypes = map[string]struct{}{
	"full_time": {},
	"match_end": {},
}

// Terminal reports whether the event marks the end of the match.
func (e Event) Terminal() bool {
	_, ok := terminalEventTypes[e.Type]
	return ok
}

// PassLike reports whether the event type describes a deliberate ball
// transfer between two actors.
func (e Event) PassLike() bool {
	switch e.Type {
	case "pass", "cross", "through_ball", "long_ball":
		return true
	default:
		return false
	}
}
