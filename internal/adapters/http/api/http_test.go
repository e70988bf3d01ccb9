package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/matchpulse/internal/adapters/http/api"
	"github.com/okian/matchpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps is a canned Dependencies implementation.
type mockDeps struct {
	frames  []model.InsightFrame
	minutes []model.MinuteAggregate
	report  model.MatchReport
	ready   bool
}

func (m *mockDeps) RecentInsightFrames() []model.InsightFrame { return m.frames }
func (m *mockDeps) MinuteAggregates() []model.MinuteAggregate { return m.minutes }

func (m *mockDeps) MinuteSeries(d time.Duration) []model.MinuteAggregate {
	n := int(d / time.Minute)
	if n <= 0 || n >= len(m.minutes) {
		return m.minutes
	}
	return m.minutes[len(m.minutes)-n:]
}

func (m *mockDeps) MatchReport() (model.MatchReport, bool) { return m.report, m.ready }

func (m *mockDeps) Stats() map[string]any {
	return map[string]any{"state": "running"}
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func TestInsightRoutes(t *testing.T) {
	Convey("Given a server with canned analytics", t, func() {
		deps := &mockDeps{
			frames: []model.InsightFrame{
				{RenderTime: 1000, BallZone: 7},
				{RenderTime: 1050, BallZone: 8},
			},
			minutes: []model.MinuteAggregate{
				{Minute: 0, Snapshots: 100},
				{Minute: 1, Snapshots: 90},
				{Minute: 2, Snapshots: 95},
			},
		}
		mux := newMux(deps)

		Convey("GET /api/insights/recent returns the retained frames", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/insights/recent", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var frames []model.InsightFrame
			So(json.Unmarshal(rec.Body.Bytes(), &frames), ShouldBeNil)
			So(frames, ShouldHaveLength, 2)
			So(frames[1].BallZone, ShouldEqual, 8)
		})

		Convey("GET /api/insights/minutes returns the full series", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/insights/minutes", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var minutes []model.MinuteAggregate
			So(json.Unmarshal(rec.Body.Bytes(), &minutes), ShouldBeNil)
			So(minutes, ShouldHaveLength, 3)
		})

		Convey("GET /api/insights/series honors the duration parameter", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/insights/series?duration=2m", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var minutes []model.MinuteAggregate
			So(json.Unmarshal(rec.Body.Bytes(), &minutes), ShouldBeNil)
			So(minutes, ShouldHaveLength, 2)
			So(minutes[0].Minute, ShouldEqual, 1)
		})

		Convey("GET /api/insights/series rejects a missing duration", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/insights/series", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /api/insights/series rejects garbage durations", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/insights/series?duration=banana", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("POST on a read-only route is rejected", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/insights/recent", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestReportRoute(t *testing.T) {
	Convey("Given a server before full time", t, func() {
		mux := newMux(&mockDeps{})

		Convey("GET /api/report returns 404 until the report exists", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a server after full time", t, func() {
		mux := newMux(&mockDeps{
			ready: true,
			report: model.MatchReport{
				Concentration: 0.4,
			},
		})

		Convey("GET /api/report returns the one-shot report", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var report model.MatchReport
			So(json.Unmarshal(rec.Body.Bytes(), &report), ShouldBeNil)
			So(report.Concentration, ShouldEqual, 0.4)
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a server", t, func() {
		mux := newMux(&mockDeps{})

		Convey("GET /healthz reports ok", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("GET /stats relays pipeline statistics", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "running")
		})

		Convey("GET /metrics serves the Prometheus registry", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
