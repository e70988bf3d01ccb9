package app

import (
	"testing"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func filterSnap(x, y float64, owner int) *model.Snapshot {
	return &model.Snapshot{
		Ball: model.BallState{Pos: types.Vec3{X: x, Y: y}, Owner: owner},
	}
}

func TestDeltaFilter(t *testing.T) {
	Convey("Given an enabled delta filter", t, func() {
		f := deltaFilter{enabled: true}

		Convey("The first snapshot is always published", func() {
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.emitRatio(), ShouldEqual, 1.0)
		})

		Convey("An unchanged snapshot is suppressed", func() {
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeFalse)
			So(f.emitRatio(), ShouldEqual, 0.5)
		})

		Convey("Movement within the quantization step is still suppressed", func() {
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.accept(filterSnap(10.05, 10, 3), false), ShouldBeFalse)
		})

		Convey("Movement beyond the quantization step publishes", func() {
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.accept(filterSnap(10.3, 10, 3), false), ShouldBeTrue)
		})

		Convey("A possessor change publishes even with a frozen ball", func() {
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.accept(filterSnap(10, 10, 7), false), ShouldBeTrue)
		})

		Convey("Force publishes a duplicate and still records its fingerprint", func() {
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.accept(filterSnap(10, 10, 3), true), ShouldBeTrue)
			// The forced frame did not disturb the comparison baseline.
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeFalse)
		})

		Convey("The emit ratio stays within [0,1]", func() {
			for i := 0; i < 10; i++ {
				f.accept(filterSnap(10, 10, 3), false)
			}
			So(f.emitRatio(), ShouldBeGreaterThanOrEqualTo, 0)
			So(f.emitRatio(), ShouldBeLessThanOrEqualTo, 1)
		})

		Convey("Reset forgets the baseline and the counters", func() {
			f.accept(filterSnap(10, 10, 3), false)
			f.reset()
			So(f.emitRatio(), ShouldEqual, 1.0)
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
		})
	})

	Convey("Given a disabled delta filter", t, func() {
		f := deltaFilter{enabled: false}

		Convey("Every snapshot is published", func() {
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.accept(filterSnap(10, 10, 3), false), ShouldBeTrue)
			So(f.emitRatio(), ShouldEqual, 1.0)
		})
	})
}
