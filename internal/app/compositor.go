package app

import (
	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/ring"
	"github.com/okian/matchpulse/internal/domain/types"
)

// epsilonSeconds guards speed derivation against division by a near-zero
// elapsed time.
const epsilonSeconds = 1e-6

// composeSnapshot assembles a snapshot at renderTimeMS by nearest-neighbor
// sampling of the source. Returns nil when there is nothing to compose
// (negative render time or an empty source); that is a skipped period, not
// an error.
func composeSnapshot(src sampleSource, renderTimeMS int64, aux *model.Aux, roster model.Roster) *model.Snapshot {
	if renderTimeMS < 0 || src.Empty() {
		return nil
	}
	renderSec := float64(renderTimeMS) / 1000

	snap := &model.Snapshot{
		RenderTime: renderTimeMS,
		Aux:        aux,
	}

	ballSamples := src.Ball()
	if entry, idx, ok := ballSamples.Nearest(renderSec); ok {
		snap.Ball = model.BallState{
			Pos:   entry.Pos,
			Owner: entry.Possessor,
			Speed: ballSpeed(ballSamples, entry, idx),
		}
	} else {
		snap.Ball.Owner = types.NoTrack
	}

	for track := 0; track < types.EntityCount; track++ {
		state := model.EntityState{Track: track}
		if entry, _, ok := src.Player(track).Nearest(renderSec); ok {
			state.Pos = entry.Pos
			state.Vel = entry.Vel
			state.State = entry.State
			state.Stamina = entry.Stamina
		}
		if r, ok := roster[track]; ok {
			state.Name = r.Name
			state.Kit = r.Kit
		}
		snap.Entities[track] = state
	}
	return snap
}

// ballSpeed derives speed from the nearest sample and its predecessor,
// falling back to the sample's own velocity when no usable pair exists.
func ballSpeed(samples trackSamples, nearest ring.Entry, idx int) float64 {
	if idx > 0 {
		prev := samples.At(idx - 1)
		dt := nearest.Time - prev.Time
		if dt > epsilonSeconds {
			return nearest.Pos.DistXY(prev.Pos) / dt
		}
	}
	return nearest.Vel.Norm()
}
