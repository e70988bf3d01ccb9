package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/matchpulse/internal/domain/model"
)

func sortMinutes(series []model.MinuteAggregate) {
	sort.Slice(series, func(a, b int) bool {
		return series[a].Minute < series[b].Minute
	})
}

// buildReport assembles the end-of-match report from the accumulated state.
// Caller holds c.mu.
func (c *Consumer) buildReport() model.MatchReport {
	minutes := c.minuteSeriesLocked()

	pressureMeans := make([]float64, 0, len(minutes))
	speedMeans := make([]float64, 0, len(minutes))
	for _, m := range minutes {
		if m.Snapshots == 0 {
			continue
		}
		pressureMeans = append(pressureMeans, m.PressureSum/float64(m.Snapshots))
		speedMeans = append(speedMeans, m.SpeedSum/float64(m.Snapshots))
	}

	var meanPressure, meanSpeed float64
	if len(pressureMeans) > 0 {
		meanPressure = stat.Mean(pressureMeans, nil)
		meanSpeed = stat.Mean(speedMeans, nil)
	}

	return model.MatchReport{
		Minutes:       minutes,
		TransitionsA:  c.matrixA,
		TransitionsB:  c.matrixB,
		TopHubs:       c.hubs.top(topHubCount),
		Concentration: Gini(c.hubs.scores()),
		MeanPressure:  meanPressure,
		MeanSpeed:     meanSpeed,
	}
}
