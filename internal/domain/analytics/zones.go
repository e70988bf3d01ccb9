package analytics

import (
	"math"

	"github.com/okian/matchpulse/internal/domain/types"
)

// pressureCap saturates raw pressure-grid samples before normalizing into
// [0,1].
const pressureCap = 3.0

// clampIndex clamps i into [0, n-1]; boundary positions clamp rather than
// fall outside the grid.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ZoneOf maps a continuous pitch position to one of the 20 zone ids:
// x quantized into 4 longitudinal quarters, y into 5 lateral lanes,
// zone = quarter*5 + lane.
func ZoneOf(pos types.Vec3) int {
	quarter := clampIndex(int(pos.X/(types.PitchLengthM/types.ZoneQuarters)), types.ZoneQuarters)
	lane := LaneOf(pos)
	return quarter*types.ZoneLanes + lane
}

// LaneOf maps a continuous pitch position to one of the 5 lateral lanes.
func LaneOf(pos types.Vec3) int {
	return clampIndex(int(pos.Y/(types.PitchWidthM/types.ZoneLanes)), types.ZoneLanes)
}

// ZoneLane returns the lane component of a zone id.
func ZoneLane(zone int) int {
	return zone % types.ZoneLanes
}

// SamplePressure reads the pressure grid cell under pos and normalizes by
// the saturation cap into [0,1]. A nil or short grid samples as zero.
func SamplePressure(grid []float64, pos types.Vec3) float64 {
	if len(grid) < types.PressureCols*types.PressureRows {
		return 0
	}
	col := clampIndex(int(pos.X/(types.PitchLengthM/types.PressureCols)), types.PressureCols)
	row := clampIndex(int(pos.Y/(types.PitchWidthM/types.PressureRows)), types.PressureRows)
	raw := grid[row*types.PressureCols+col]
	return math.Max(0, math.Min(1, raw/pressureCap))
}
