package app

import (
	"sort"

	"github.com/okian/matchpulse/internal/domain/ring"
	"github.com/okian/matchpulse/internal/domain/types"
)

// smoothMinSamples is the load-time heuristic separating bulk-loaded
// timelines from live incremental histories: only series longer than this
// are smoothed.
const smoothMinSamples = 20

// smoothHalfWidth gives a centered 5-tap moving average.
const smoothHalfWidth = 2

// newTimeline builds a replay timeline from bulk-loaded series, sorting each
// track by time and smoothing long series for presentation. The input slices
// are copied; the caller's data is never mutated.
func newTimeline(ball []ring.Entry, players map[int][]ring.Entry, smooth bool) *timeline {
	t := &timeline{}
	t.ball.entries = prepareSeries(ball, smooth)
	for track, samples := range players {
		if !types.ValidTrack(track) {
			continue
		}
		t.players[track].entries = prepareSeries(samples, smooth)
	}
	return t
}

func prepareSeries(samples []ring.Entry, smooth bool) []ring.Entry {
	if len(samples) == 0 {
		return nil
	}
	out := make([]ring.Entry, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Time < out[b].Time
	})
	if smooth && len(out) > smoothMinSamples {
		return smoothSeries(out)
	}
	return out
}

// smoothSeries returns a copy with position and velocity passed through a
// centered moving average. Times, state tags and stamina are untouched.
func smoothSeries(in []ring.Entry) []ring.Entry {
	out := make([]ring.Entry, len(in))
	copy(out, in)
	for i := range in {
		lo := i - smoothHalfWidth
		if lo < 0 {
			lo = 0
		}
		hi := i + smoothHalfWidth
		if hi > len(in)-1 {
			hi = len(in) - 1
		}
		var pos, vel types.Vec3
		for j := lo; j <= hi; j++ {
			pos = pos.Add(in[j].Pos)
			vel = vel.Add(in[j].Vel)
		}
		n := float64(hi - lo + 1)
		out[i].Pos = pos.Scale(1 / n)
		out[i].Vel = vel.Scale(1 / n)
	}
	return out
}
