package events_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/matchpulse/internal/domain/events"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLedger(t *testing.T) {
	Convey("Given a new ledger", t, func() {
		l := events.NewLedger()

		Convey("Then it starts empty", func() {
			So(l.Size(), ShouldEqual, 0)
		})

		Convey("When recording a novel key", func() {
			seen := l.SeenAndRecord(context.Background(), "goal|120000|4|-1")

			Convey("Then it reports unseen and retains it", func() {
				So(seen, ShouldBeFalse)
				So(l.Size(), ShouldEqual, 1)
			})

			Convey("And recording the same key again reports seen", func() {
				So(l.SeenAndRecord(context.Background(), "goal|120000|4|-1"), ShouldBeTrue)
				So(l.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the ledger grows past its trim threshold", func() {
			l = events.NewLedger(events.WithLedgerBounds(50, 25))
			for i := 0; i < 51; i++ {
				l.SeenAndRecord(context.Background(), fmt.Sprintf("pass|%d|1|2", i))
			}

			Convey("Then it is trimmed to the retained count", func() {
				So(l.Size(), ShouldEqual, 25)
			})

			Convey("And only the oldest keys were forgotten", func() {
				// Key 25 was trimmed away, key 26 survived.
				So(l.SeenAndRecord(context.Background(), "pass|25|1|2"), ShouldBeFalse)
				So(l.SeenAndRecord(context.Background(), "pass|50|1|2"), ShouldBeTrue)
			})
		})

		Convey("When the ledger is reset", func() {
			l.SeenAndRecord(context.Background(), "k")
			l.Reset()

			Convey("Then previously seen keys are novel again", func() {
				So(l.Size(), ShouldEqual, 0)
				So(l.SeenAndRecord(context.Background(), "k"), ShouldBeFalse)
			})
		})
	})
}
