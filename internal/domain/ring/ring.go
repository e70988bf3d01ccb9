// Package ring provides fixed-depth per-entity sample history. Pure storage,
// no policy: eviction is FIFO and sampling is nearest-by-time.
package ring

import (
	"math"

	"github.com/okian/matchpulse/internal/domain/types"
)

// Depth is the fixed capacity of every buffer.
const Depth = 4

// Entry is one stored sample.
type Entry struct {
	Time    float64 // seconds
	Pos     types.Vec3
	Vel     types.Vec3
	State   string
	Stamina float64

	// Possessor is meaningful on ball entries only: the owning track id or
	// types.NoTrack.
	Possessor int
}

// Buffer holds up to Depth entries, oldest first. The zero value is ready to
// use.
type Buffer struct {
	entries [Depth]Entry
	start   int
	count   int
}

// Len returns the number of stored entries.
func (b *Buffer) Len() int {
	return b.count
}

// Append stores e, evicting the oldest entry when the buffer is full.
func (b *Buffer) Append(e Entry) {
	if b.count < Depth {
		b.entries[(b.start+b.count)%Depth] = e
		b.count++
		return
	}
	b.entries[b.start] = e
	b.start = (b.start + 1) % Depth
}

// At returns the i-th entry, oldest first.
func (b *Buffer) At(i int) Entry {
	return b.entries[(b.start+i)%Depth]
}

// Latest returns the newest entry.
func (b *Buffer) Latest() (Entry, bool) {
	if b.count == 0 {
		return Entry{}, false
	}
	return b.At(b.count - 1), true
}

// Nearest returns the entry whose time is closest to t and its index.
func (b *Buffer) Nearest(t float64) (Entry, int, bool) {
	if b.count == 0 {
		return Entry{}, 0, false
	}
	best := 0
	bestDist := math.Abs(b.At(0).Time - t)
	for i := 1; i < b.count; i++ {
		if d := math.Abs(b.At(i).Time - t); d < bestDist {
			best, bestDist = i, d
		}
	}
	return b.At(best), best, true
}

// Reset discards all entries.
func (b *Buffer) Reset() {
	b.start, b.count = 0, 0
}

// History bundles the ball buffer with one buffer per track id.
type History struct {
	ball    Buffer
	players [types.EntityCount]Buffer
}

// Ball returns the ball buffer.
func (h *History) Ball() *Buffer {
	return &h.ball
}

// Player returns the buffer for a track id, or nil for an invalid id.
func (h *History) Player(track int) *Buffer {
	if !types.ValidTrack(track) {
		return nil
	}
	return &h.players[track]
}

// Empty reports whether no samples have been ingested at all.
func (h *History) Empty() bool {
	if h.ball.Len() > 0 {
		return false
	}
	for i := range h.players {
		if h.players[i].Len() > 0 {
			return false
		}
	}
	return true
}

// Reset clears every buffer.
func (h *History) Reset() {
	h.ball.Reset()
	for i := range h.players {
		h.players[i].Reset()
	}
}
