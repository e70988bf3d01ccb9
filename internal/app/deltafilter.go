package app

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/pkg/metrics"
)

// Quantization steps for the snapshot fingerprint: fine for the ball, coarse
// for entity displacement.
const (
	ballQuantum   = 0.25
	entityQuantum = 0.5
)

// deltaFilter suppresses publication of snapshots whose fingerprint matches
// the previously published one. A single runtime toggle enables it; replay
// needs every frame for scrubbing fidelity.
type deltaFilter struct {
	enabled  bool
	lastFP   uint64
	haveLast bool
	emitted  uint64
	dropped  uint64
}

// accept reports whether the snapshot should be published and updates the
// emit/drop counters. force publishes regardless of the fingerprint while
// still recording it, so the next comparison stays meaningful.
func (f *deltaFilter) accept(snap *model.Snapshot, force bool) bool {
	if !f.enabled {
		f.emitted++
		return true
	}
	fp := fingerprint(snap)
	if force {
		f.lastFP = fp
		f.haveLast = true
		f.emitted++
		metrics.UpdateEmitRatio(f.emitRatio())
		return true
	}
	if f.haveLast && fp == f.lastFP {
		f.dropped++
		metrics.RecordSnapshotDropped()
		metrics.UpdateEmitRatio(f.emitRatio())
		return false
	}
	f.lastFP = fp
	f.haveLast = true
	f.emitted++
	metrics.UpdateEmitRatio(f.emitRatio())
	return true
}

// emitRatio returns emit / (emit + drop), 1 before any decision.
func (f *deltaFilter) emitRatio() float64 {
	total := f.emitted + f.dropped
	if total == 0 {
		return 1
	}
	return float64(f.emitted) / float64(total)
}

func (f *deltaFilter) reset() {
	f.haveLast = false
	f.lastFP = 0
	f.emitted = 0
	f.dropped = 0
}

// fingerprint hashes quantized ball position, possessor id and coarse entity
// positions. Events are deliberately excluded: a snapshot carrying events is
// published by the collector path regardless.
func fingerprint(snap *model.Snapshot) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeQuantized := func(v, quantum float64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(math.Round(v/quantum))))
		h.Write(buf[:]) //nolint:errcheck // fnv never fails
	}

	writeQuantized(snap.Ball.Pos.X, ballQuantum)
	writeQuantized(snap.Ball.Pos.Y, ballQuantum)
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(snap.Ball.Owner)))
	h.Write(buf[:]) //nolint:errcheck // fnv never fails

	for i := range snap.Entities {
		writeQuantized(snap.Entities[i].Pos.X, entityQuantum)
		writeQuantized(snap.Entities[i].Pos.Y, entityQuantum)
	}
	return h.Sum64()
}
