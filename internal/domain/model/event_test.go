package model_test

import (
	"testing"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEventNormalization(t *testing.T) {
	Convey("Given raw events with heterogeneous time bases", t, func() {
		Convey("When the time is below the minute threshold", func() {
			e := model.RawEvent{Type: "Goal", Time: 45, Actor: 9}.Normalize()

			Convey("Then it is interpreted as match minutes", func() {
				So(e.TimeMS, ShouldEqual, int64(45*60_000))
			})
		})

		Convey("When the time is already in milliseconds", func() {
			e := model.RawEvent{Type: "goal", Time: 271_000, Actor: 9}.Normalize()

			Convey("Then it passes through unchanged", func() {
				So(e.TimeMS, ShouldEqual, 271_000)
			})
		})

		Convey("When the time sits on either side of the threshold", func() {
			below := model.RawEvent{Type: "goal", Time: 999, Actor: 9}.Normalize()
			at := model.RawEvent{Type: "goal", Time: 1000, Actor: 9}.Normalize()

			Convey("Then 999 reads as minutes and 1000 as milliseconds", func() {
				// Millisecond stamps inside the first second of a match are
				// misread as minutes; producers must start at the threshold.
				So(below.TimeMS, ShouldEqual, int64(999*60_000))
				So(at.TimeMS, ShouldEqual, 1000)
			})
		})

		Convey("When the type carries stray case and spacing", func() {
			e := model.RawEvent{Type: "  Through_Ball ", Time: 10_000, Actor: 3}.Normalize()

			Convey("Then the canonical type is trimmed and lower-cased", func() {
				So(e.Type, ShouldEqual, "through_ball")
				So(e.PassLike(), ShouldBeTrue)
			})
		})

		Convey("When the target is out of range", func() {
			e := model.RawEvent{Type: "pass", Time: 10_000, Actor: 3, Target: 99}.Normalize()

			Convey("Then it is coerced to the no-track sentinel", func() {
				So(e.Target, ShouldEqual, types.NoTrack)
			})
		})
	})
}

func TestEventIdentity(t *testing.T) {
	Convey("Given two events differing only in payload", t, func() {
		a := model.RawEvent{Type: "pass", Time: 10_000, Actor: 1, Target: 2, Payload: "x"}.Normalize()
		b := model.RawEvent{Type: "pass", Time: 10_000, Actor: 1, Target: 2, Payload: "y"}.Normalize()

		Convey("Then they share an identity key", func() {
			So(a.Key(), ShouldEqual, b.Key())
		})
	})

	Convey("Given events differing in any identity field", t, func() {
		base := model.RawEvent{Type: "pass", Time: 10_000, Actor: 1, Target: 2}.Normalize()
		other := model.RawEvent{Type: "pass", Time: 10_050, Actor: 1, Target: 2}.Normalize()

		Convey("Then their keys differ", func() {
			So(base.Key(), ShouldNotEqual, other.Key())
		})
	})
}

func TestEventValidity(t *testing.T) {
	Convey("Given candidate events", t, func() {
		Convey("An event with no type is invalid", func() {
			e := model.RawEvent{Time: 10_000, Actor: 1}.Normalize()
			e.Type = ""
			So(e.Valid(), ShouldBeFalse)
		})

		Convey("An event with only a position is valid", func() {
			e := model.RawEvent{
				Type: "whistle", Time: 10_000,
				Actor: types.NoTrack, Target: types.NoTrack,
				Pos: types.Vec3{X: 52.5, Y: 34},
			}.Normalize()
			So(e.Valid(), ShouldBeTrue)
		})

		Convey("An event with no actor, target or position is invalid", func() {
			e := model.RawEvent{
				Type: "whistle", Time: 10_000,
				Actor: types.NoTrack, Target: types.NoTrack,
			}.Normalize()
			So(e.Valid(), ShouldBeFalse)
		})

		Convey("Terminal markers are recognized", func() {
			So(model.Event{Type: "full_time"}.Terminal(), ShouldBeTrue)
			So(model.Event{Type: "match_end"}.Terminal(), ShouldBeTrue)
			So(model.Event{Type: "goal"}.Terminal(), ShouldBeFalse)
		})
	})
}
