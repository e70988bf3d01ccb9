package app

import (
	"math"
	"testing"

	"github.com/okian/matchpulse/internal/domain/ring"
	"github.com/okian/matchpulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// zigzag builds n samples 100 ms apart whose y position alternates +-1 around
// a straight x run.
func zigzag(n int) []ring.Entry {
	out := make([]ring.Entry, n)
	for i := range out {
		y := 1.0
		if i%2 == 1 {
			y = -1.0
		}
		out[i] = ring.Entry{
			Time: float64(i) * 0.1,
			Pos:  types.Vec3{X: float64(i), Y: y},
		}
	}
	return out
}

func TestBulkLoadSmoothing(t *testing.T) {
	Convey("Given bulk-loaded sample series", t, func() {
		Convey("A long series is smoothed for presentation", func() {
			tl := newTimeline(zigzag(30), nil, true)

			entries := tl.ball.entries
			So(entries, ShouldHaveLength, 30)
			// The centered average flattens the alternating +-1 jitter.
			for i := smoothHalfWidth; i < len(entries)-smoothHalfWidth; i++ {
				So(math.Abs(entries[i].Pos.Y), ShouldBeLessThan, 0.5)
			}
			// Times are untouched.
			So(entries[10].Time, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("A short series is left verbatim", func() {
			tl := newTimeline(zigzag(10), nil, true)

			entries := tl.ball.entries
			So(entries, ShouldHaveLength, 10)
			So(entries[3].Pos.Y, ShouldEqual, -1.0)
		})

		Convey("An unordered series is sorted by time", func() {
			samples := []ring.Entry{
				{Time: 2.0, Pos: types.Vec3{X: 20}},
				{Time: 0.5, Pos: types.Vec3{X: 5}},
				{Time: 1.0, Pos: types.Vec3{X: 10}},
			}
			tl := newTimeline(samples, nil, true)

			entries := tl.ball.entries
			So(entries[0].Time, ShouldEqual, 0.5)
			So(entries[1].Time, ShouldEqual, 1.0)
			So(entries[2].Time, ShouldEqual, 2.0)

			Convey("And the caller's slice is untouched", func() {
				So(samples[0].Time, ShouldEqual, 2.0)
			})
		})

		Convey("Player series with invalid track ids are ignored", func() {
			tl := newTimeline(nil, map[int][]ring.Entry{
				5:  zigzag(3),
				99: zigzag(3),
			}, true)

			So(tl.players[5].Len(), ShouldEqual, 3)
			So(tl.Empty(), ShouldBeFalse)
		})

		Convey("Nearest sampling on a series clamps at both ends", func() {
			tl := newTimeline(zigzag(10), nil, false)

			e, _, ok := tl.ball.Nearest(-5)
			So(ok, ShouldBeTrue)
			So(e.Time, ShouldEqual, 0.0)

			e, _, ok = tl.ball.Nearest(100)
			So(ok, ShouldBeTrue)
			So(e.Time, ShouldAlmostEqual, 0.9, 1e-9)

			e, _, ok = tl.ball.Nearest(0.44)
			So(ok, ShouldBeTrue)
			So(e.Time, ShouldAlmostEqual, 0.4, 1e-9)
		})
	})
}
