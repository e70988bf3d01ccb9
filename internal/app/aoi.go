package app

import (
	"sort"

	"github.com/okian/matchpulse/internal/domain/model"
)

// Defaults for the area-of-interest classifier.
const (
	defaultAOIRadiusM = 12.0
	defaultAOIMinHigh = 6
)

// annotateAOI tags each entity high or low priority by proximity to the
// ball. Entities are never removed; downstream consumers decide what to do
// with low-priority ones. Classification is skipped entirely (tags left
// empty) when no entity carries data or the ball position is the zero-vector
// sentinel.
func annotateAOI(snap *model.Snapshot, radiusM float64, minHigh int) {
	if snap.Ball.Pos.IsZero() {
		return
	}
	present := 0
	for i := range snap.Entities {
		if snap.Entities[i].State != "" || !snap.Entities[i].Pos.IsZero() {
			present++
		}
	}
	if present == 0 {
		return
	}

	type distTrack struct {
		track int
		dist  float64
	}
	dists := make([]distTrack, 0, len(snap.Entities))
	high := 0
	for i := range snap.Entities {
		d := snap.Entities[i].Pos.DistXY(snap.Ball.Pos)
		dists = append(dists, distTrack{track: i, dist: d})
		if d <= radiusM {
			snap.Entities[i].Priority = model.PriorityHigh
			high++
		} else {
			snap.Entities[i].Priority = model.PriorityLow
		}
	}

	// Top up to the floor by nearest distance so sparse phases still keep a
	// useful high-priority set.
	if high < minHigh {
		sort.Slice(dists, func(a, b int) bool { return dists[a].dist < dists[b].dist })
		for _, dt := range dists {
			if high >= minHigh {
				break
			}
			if snap.Entities[dt.track].Priority != model.PriorityHigh {
				snap.Entities[dt.track].Priority = model.PriorityHigh
				high++
			}
		}
	}
}
