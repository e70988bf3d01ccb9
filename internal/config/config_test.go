package config_test

import (
	"context"
	"testing"

	"github.com/okian/matchpulse/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig(t *testing.T) {
	ctx := context.Background()

	Convey("Given the configuration defaults", t, func() {
		cfg := config.New(ctx)

		Convey("Then the output clock matches the pipeline contract", func() {
			So(cfg.TickPeriodMS, ShouldEqual, 50)
			So(cfg.RenderDelayMS, ShouldEqual, 100)
		})

		Convey("Then the event machinery defaults are set", func() {
			So(cfg.EventWindowMS, ShouldEqual, 500)
			So(cfg.LedgerMax, ShouldEqual, 50)
			So(cfg.LedgerKeep, ShouldEqual, 25)
		})

		Convey("Then the derived-analytics weights are set", func() {
			So(cfg.HubPossessionWeight, ShouldEqual, 1.0)
			So(cfg.HubReceptionWeight, ShouldEqual, 2.0)
			So(cfg.HubReleaseWeight, ShouldEqual, 2.0)
		})
	})

	Convey("Given a clean environment", t, func() {
		cfg, err := config.Load(ctx)

		Convey("Then loading yields the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DeltaFilter, ShouldBeTrue)
		})
	})

	Convey("Given environment overrides", t, func() {
		t.Setenv("MATCHPULSE_ADDR", ":7070")
		t.Setenv("MATCHPULSE_TICK_PERIOD_MS", "25")

		cfg, err := config.Load(ctx)

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.TickPeriodMS, ShouldEqual, 25)
		})
	})

	Convey("Given an invalid override", t, func() {
		t.Setenv("MATCHPULSE_TICK_PERIOD_MS", "-10")

		_, err := config.Load(ctx)

		Convey("Then loading fails validation", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "tick_period_ms")
		})
	})
}
