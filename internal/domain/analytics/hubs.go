package analytics

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/types"
)

// Default hub score weights: possession seconds, receptions, releases.
const (
	defaultPossessionWeight = 1.0
	defaultReceptionWeight  = 2.0
	defaultReleaseWeight    = 2.0
)

// hubAccumulator tracks per-track involvement for the whole match. Reset only
// on full pipeline reset.
type hubAccumulator struct {
	possessionSec [types.EntityCount]float64
	receptions    [types.EntityCount]float64
	releases      [types.EntityCount]float64

	wPossession float64
	wReception  float64
	wRelease    float64
}

func newHubAccumulator() hubAccumulator {
	return hubAccumulator{
		wPossession: defaultPossessionWeight,
		wReception:  defaultReceptionWeight,
		wRelease:    defaultReleaseWeight,
	}
}

func (h *hubAccumulator) reset() {
	w1, w2, w3 := h.wPossession, h.wReception, h.wRelease
	*h = hubAccumulator{wPossession: w1, wReception: w2, wRelease: w3}
}

// score returns the weighted involvement score for one track.
func (h *hubAccumulator) score(track int) float64 {
	return h.wPossession*h.possessionSec[track] +
		h.wReception*h.receptions[track] +
		h.wRelease*h.releases[track]
}

// scores returns all 22 hub scores by track id.
func (h *hubAccumulator) scores() []float64 {
	out := make([]float64, types.EntityCount)
	for i := range out {
		out[i] = h.score(i)
	}
	return out
}

// top returns the n highest-scoring tracks.
func (h *hubAccumulator) top(n int) []model.HubRank {
	ranks := make([]model.HubRank, types.EntityCount)
	for i := range ranks {
		ranks[i] = model.HubRank{Track: i, Score: h.score(i)}
	}
	sort.SliceStable(ranks, func(a, b int) bool {
		return ranks[a].Score > ranks[b].Score
	})
	if n > len(ranks) {
		n = len(ranks)
	}
	return ranks[:n]
}

// Gini computes the Gini coefficient over a non-negative score vector using
// the closed form (2*sum((i+1)*x_sorted[i]))/(n*sum(x)) - (n+1)/n, clamped
// to [0,1]. Empty or zero-sum vectors short-circuit to 0.
func Gini(scores []float64) float64 {
	n := len(scores)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)

	total := floats.Sum(sorted)
	if total <= 1e-9 {
		return 0
	}
	var weighted float64
	for i, x := range sorted {
		weighted += float64(i+1) * x
	}
	g := (2*weighted)/(float64(n)*total) - float64(n+1)/float64(n)
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}
