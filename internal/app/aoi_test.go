package app

import (
	"testing"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnnotateAOI(t *testing.T) {
	Convey("Given a snapshot with a ball and populated entities", t, func() {
		snap := &model.Snapshot{
			Ball: model.BallState{Pos: types.Vec3{X: 50, Y: 34}},
		}
		// Three entities near the ball, the rest spread across the far end.
		for i := 0; i < 3; i++ {
			snap.Entities[i] = model.EntityState{
				Track: i, State: "moving",
				Pos: types.Vec3{X: 50 + float64(i), Y: 34},
			}
		}
		for i := 3; i < 12; i++ {
			snap.Entities[i] = model.EntityState{
				Track: i, State: "moving",
				Pos: types.Vec3{X: 100, Y: float64(i * 5)},
			}
		}

		Convey("When classified with no high-priority floor", func() {
			annotateAOI(snap, 12, 0)

			Convey("Then only entities within the radius are high priority", func() {
				So(snap.Entities[0].Priority, ShouldEqual, model.PriorityHigh)
				So(snap.Entities[2].Priority, ShouldEqual, model.PriorityHigh)
				So(snap.Entities[5].Priority, ShouldEqual, model.PriorityLow)
			})

			Convey("And no entity was removed", func() {
				for i := 0; i < 12; i++ {
					So(snap.Entities[i].Track, ShouldEqual, i)
				}
			})
		})

		Convey("When fewer entities fall inside the radius than the floor", func() {
			annotateAOI(snap, 12, 6)

			high := 0
			for i := range snap.Entities {
				if snap.Entities[i].Priority == model.PriorityHigh {
					high++
				}
			}

			Convey("Then the nearest entities top up to the floor", func() {
				So(high, ShouldEqual, 6)
				So(snap.Entities[0].Priority, ShouldEqual, model.PriorityHigh)
			})
		})
	})

	Convey("Given a snapshot with the zero-vector ball sentinel", t, func() {
		snap := &model.Snapshot{}
		snap.Entities[0] = model.EntityState{State: "moving", Pos: types.Vec3{X: 10, Y: 10}}

		annotateAOI(snap, 12, 6)

		Convey("Then classification is skipped entirely", func() {
			So(snap.Entities[0].Priority, ShouldEqual, model.Priority(""))
		})
	})

	Convey("Given a snapshot where no entity carries data", t, func() {
		snap := &model.Snapshot{
			Ball: model.BallState{Pos: types.Vec3{X: 50, Y: 34}},
		}

		annotateAOI(snap, 12, 6)

		Convey("Then classification is skipped entirely", func() {
			for i := range snap.Entities {
				So(snap.Entities[i].Priority, ShouldEqual, model.Priority(""))
			}
		})
	})
}
