package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithRegistry(reg))

		Convey("Then all collectors register without collision", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters only appear after first use; gauges and histograms
			// register eagerly.
			So(families, ShouldNotBeNil)
		})

		Convey("When custom options are applied", func() {
			m2 := NewManager(
				WithRegistry(prometheus.NewRegistry()),
				WithNamespace("custom"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 5, 10}),
			)
			So(m2.namespace, ShouldEqual, "custom")
			So(m2.subsystem, ShouldEqual, "sub")
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the package-level helpers do not panic", func() {
			So(func() {
				RecordTickIngested()
				RecordTickMalformed()
				RecordSnapshotComposed()
				RecordSnapshotEmitted()
				RecordSnapshotDropped()
				UpdateEmitRatio(0.9)
				RecordComposeLatency(1.2)
				RecordEventEmitted()
				RecordEventDuplicate()
				RecordEventInvalid()
				UpdateLedgerSize(10)
				RecordTransportReset()
				UpdatePlaybackSpeed(1.5)
				RecordInsightFrame()
				RecordZoneTransition("carry")
				RecordHTTPRequest("stats", "GET", "200")
				RecordHTTPRequestDuration("stats", "GET", "200", 3.5)
			}, ShouldNotPanic)
		})

		Convey("Then the registry backing promhttp is available", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
