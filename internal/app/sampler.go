package app

import (
	"github.com/okian/matchpulse/internal/domain/ring"
	"github.com/okian/matchpulse/internal/domain/types"
)

// trackSamples is the read surface the compositor needs from any per-entity
// history: the live ring buffers and bulk-loaded replay series both satisfy
// it.
type trackSamples interface {
	Len() int
	At(i int) ring.Entry
	Nearest(t float64) (ring.Entry, int, bool)
}

// sampleSource bundles per-track sample access for composition.
type sampleSource interface {
	Ball() trackSamples
	Player(track int) trackSamples
	Empty() bool
}

// liveSource adapts the ring-buffer history to sampleSource.
type liveSource struct {
	h *ring.History
}

func (s liveSource) Ball() trackSamples { return s.h.Ball() }

func (s liveSource) Player(track int) trackSamples {
	b := s.h.Player(track)
	if b == nil {
		return emptySamples{}
	}
	return b
}

func (s liveSource) Empty() bool { return s.h.Empty() }

// emptySamples is the no-data fallback for out-of-range track ids.
type emptySamples struct{}

func (emptySamples) Len() int                                { return 0 }
func (emptySamples) At(int) ring.Entry                       { return ring.Entry{} }
func (emptySamples) Nearest(float64) (ring.Entry, int, bool) { return ring.Entry{}, 0, false }

var _ sampleSource = liveSource{}
var _ trackSamples = (*ring.Buffer)(nil)
var _ trackSamples = (*trackSeries)(nil)

// trackSeries is a bulk-loaded, time-ordered sample series for one track.
type trackSeries struct {
	entries []ring.Entry
}

func (t *trackSeries) Len() int { return len(t.entries) }

func (t *trackSeries) At(i int) ring.Entry { return t.entries[i] }

func (t *trackSeries) Nearest(tt float64) (ring.Entry, int, bool) {
	n := len(t.entries)
	if n == 0 {
		return ring.Entry{}, 0, false
	}
	// First entry at or after tt.
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if t.entries[mid].Time < tt {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	switch {
	case lo == 0:
		return t.entries[0], 0, true
	case lo == n:
		return t.entries[n-1], n - 1, true
	}
	if tt-t.entries[lo-1].Time <= t.entries[lo].Time-tt {
		return t.entries[lo-1], lo - 1, true
	}
	return t.entries[lo], lo, true
}

// timeline is a bulk-loaded replay source for the ball and all tracks.
type timeline struct {
	ball    trackSeries
	players [types.EntityCount]trackSeries
}

func (t *timeline) Ball() trackSamples { return &t.ball }

func (t *timeline) Player(track int) trackSamples {
	if !types.ValidTrack(track) {
		return emptySamples{}
	}
	return &t.players[track]
}

func (t *timeline) Empty() bool {
	if len(t.ball.entries) > 0 {
		return false
	}
	for i := range t.players {
		if len(t.players[i].entries) > 0 {
			return false
		}
	}
	return true
}

// end returns the newest sample time across all series, in seconds.
func (t *timeline) end() float64 {
	var end float64
	if n := len(t.ball.entries); n > 0 {
		end = t.ball.entries[n-1].Time
	}
	for i := range t.players {
		if n := len(t.players[i].entries); n > 0 && t.players[i].entries[n-1].Time > end {
			end = t.players[i].entries[n-1].Time
		}
	}
	return end
}
