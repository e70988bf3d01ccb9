// Package app provides the telemetry pipeline service: tick ingestion,
// fixed-rate snapshot composition, event windowing, filtering, transport
// control and fan-out to subscribers.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/okian/matchpulse/internal/domain/analytics"
	"github.com/okian/matchpulse/internal/domain/events"
	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/ring"
	"github.com/okian/matchpulse/pkg/logger"
	"github.com/okian/matchpulse/pkg/metrics"
)

// Output clock defaults.
const (
	defaultPeriodMS = 50
	defaultDelayMS  = 100
)

// Service owns the pipeline state. Ring buffers, the dedup ledger and the
// analytics accumulators are owned exclusively here; the only external
// mutation points are PushTick/LoadBulkTimeline and the transport resets.
type Service struct {
	mu sync.Mutex

	// Configuration.
	periodMS      int64
	delayMS       int64
	eventWindowMS int64
	ledgerMax     int
	ledgerKeep    int
	aoiRadiusM    float64
	aoiMinHigh    int
	filterEnabled bool
	hubWeights    [3]float64

	// Components.
	history   *ring.History
	collector *events.Collector
	filter    deltaFilter
	insight   *analytics.Consumer
	replay    *timeline // nil in live mode

	// Pipeline state.
	state         TransportState
	speed         float64
	playheadMS    int64
	watermarkMS   int64
	haveWatermark bool
	aux           *model.Aux
	roster        model.Roster
	lastRenderMS  int64

	// Run loop.
	stopCh chan struct{}
	doneCh chan struct{}

	// Subscribers.
	subMu        sync.RWMutex
	snapshotSubs []func(int64, *model.Snapshot)
	frameSubs    []func(model.InsightFrame)
	reportSubs   []func(model.MatchReport)

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithOutputClock sets the composition period and the render delay.
func WithOutputClock(period, delay time.Duration) Option {
	return func(s *Service) {
		if period > 0 {
			s.periodMS = period.Milliseconds()
		}
		if delay >= 0 {
			s.delayMS = delay.Milliseconds()
		}
	}
}

// WithEventWindow sets the half-width of the event collection window.
func WithEventWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.eventWindowMS = window.Milliseconds()
		}
	}
}

// WithLedgerBounds sets the dedup ledger trim threshold and retained count.
func WithLedgerBounds(max, keep int) Option {
	return func(s *Service) {
		if keep > 0 && max >= keep {
			s.ledgerMax = max
			s.ledgerKeep = keep
		}
	}
}

// WithAOI sets the high-priority radius and the minimum high-priority count.
func WithAOI(radiusM float64, minHigh int) Option {
	return func(s *Service) {
		if radiusM > 0 {
			s.aoiRadiusM = radiusM
		}
		if minHigh >= 0 {
			s.aoiMinHigh = minHigh
		}
	}
}

// WithDeltaFilter toggles snapshot suppression outside replay mode.
func WithDeltaFilter(enabled bool) Option {
	return func(s *Service) { s.filterEnabled = enabled }
}

// WithHubWeights sets the analytics hub score weights.
func WithHubWeights(possession, reception, release float64) Option {
	return func(s *Service) {
		s.hubWeights = [3]float64{possession, reception, release}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		periodMS:      defaultPeriodMS,
		delayMS:       defaultDelayMS,
		eventWindowMS: 500,
		ledgerMax:     50,
		ledgerKeep:    25,
		aoiRadiusM:    defaultAOIRadiusM,
		aoiMinHigh:    defaultAOIMinHigh,
		filterEnabled: true,
		hubWeights:    [3]float64{1.0, 2.0, 2.0},
		speed:         1.0,
		state:         TransportStopped,
		history:       &ring.History{},
		roster:        model.Roster{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get().Named("pipeline")
	}
	s.collector = events.NewCollector(
		events.WithWindow(s.eventWindowMS),
		events.WithLedger(events.NewLedger(events.WithLedgerBounds(s.ledgerMax, s.ledgerKeep))),
		events.WithLogger(s.log.Named("events")),
	)
	s.insight = analytics.New(
		analytics.WithHubWeights(s.hubWeights[0], s.hubWeights[1], s.hubWeights[2]),
		analytics.WithLogger(s.log.Named("analytics")),
		analytics.WithFrameCallback(s.fanOutFrame),
		analytics.WithReportCallback(s.fanOutReport),
	)
	s.filter.enabled = s.filterEnabled
	return s
}

// OnSnapshot registers a published-snapshot subscriber.
func (s *Service) OnSnapshot(fn func(renderTimeMS int64, snap *model.Snapshot)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.snapshotSubs = append(s.snapshotSubs, fn)
}

// OnInsightFrame registers an insight-frame subscriber.
func (s *Service) OnInsightFrame(fn func(model.InsightFrame)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.frameSubs = append(s.frameSubs, fn)
}

// OnMatchReport registers a match-report subscriber.
func (s *Service) OnMatchReport(fn func(model.MatchReport)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.reportSubs = append(s.reportSubs, fn)
}

func (s *Service) fanOutFrame(frame model.InsightFrame) {
	s.subMu.RLock()
	subs := s.frameSubs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(frame)
	}
}

func (s *Service) fanOutReport(report model.MatchReport) {
	s.subMu.RLock()
	subs := s.reportSubs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(report)
	}
}

// SetRosters replaces the track-id labeling table. May be called at any time
// between matches.
func (s *Service) SetRosters(roster model.Roster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = make(model.Roster, len(roster))
	for id, entry := range roster {
		s.roster[id] = entry
	}
}

// LoadBulkTimeline replaces the position source with a pre-recorded timeline
// and switches the pipeline into replay mode. Long series are smoothed for
// presentation; the caller's slices are copied, never mutated.
func (s *Service) LoadBulkTimeline(ball []ring.Entry, players map[int][]ring.Entry, rawEvents []model.RawEvent) {
	tl := newTimeline(ball, players, true)

	s.mu.Lock()
	s.replay = tl
	s.playheadMS = 0
	s.lastRenderMS = 0
	// Replay needs every frame for scrubbing fidelity.
	s.filter.enabled = false
	s.filter.reset()
	s.mu.Unlock()

	s.collector.Load(rawEvents)
	s.log.Info(context.Background(), "bulk timeline loaded",
		logger.Int("ball_samples", len(ball)),
		logger.Int("tracks", len(players)),
		logger.Int("events", len(rawEvents)),
	)
}

// Advance runs one output period synchronously: pick the render timestamp,
// compose, filter, annotate, attach windowed events and publish. The ticker
// loop calls this; replay drivers and tests may call it directly.
func (s *Service) Advance(ctx context.Context) {
	s.mu.Lock()
	if s.state != TransportRunning {
		s.mu.Unlock()
		return
	}

	var (
		renderMS int64
		src      sampleSource
	)
	if s.replay != nil {
		renderMS = s.playheadMS
		next := s.playheadMS + int64(float64(s.periodMS)*s.speed)
		if endMS := int64(s.replay.end() * 1000); next > endMS {
			next = endMS
		}
		s.playheadMS = next
		src = s.replay
	} else {
		if !s.haveWatermark {
			s.mu.Unlock()
			return
		}
		renderMS = s.watermarkMS - s.delayMS
		src = liveSource{h: s.history}
	}

	start := time.Now()
	snap := composeSnapshot(src, renderMS, s.aux, s.roster)
	if snap == nil {
		s.mu.Unlock()
		return
	}
	metrics.RecordSnapshotComposed()
	metrics.RecordComposeLatency(float64(time.Since(start).Microseconds()) / 1000)

	snap.Events = s.collector.Collect(ctx, renderMS)

	// Snapshots carrying events bypass suppression so no windowed event is
	// ever lost to the filter.
	if !s.filter.accept(snap, len(snap.Events) > 0) {
		s.mu.Unlock()
		return
	}

	annotateAOI(snap, s.aoiRadiusM, s.aoiMinHigh)
	s.lastRenderMS = renderMS
	s.mu.Unlock()

	metrics.RecordSnapshotEmitted()

	s.subMu.RLock()
	subs := s.snapshotSubs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(renderMS, snap)
	}

	s.insight.Consume(ctx, snap)
}

// fullReset restores every owned buffer and accumulator to its pre-ingestion
// state. Caller holds s.mu.
func (s *Service) fullReset(ctx context.Context, reason string) {
	s.history.Reset()
	s.collector.Reset()
	s.filter.reset()
	s.insight.Reset()
	s.aux = nil
	s.watermarkMS = 0
	s.haveWatermark = false
	s.playheadMS = 0
	s.lastRenderMS = 0
	metrics.RecordTransportReset()
	s.log.Info(ctx, "pipeline reset", logger.String("reason", reason))
}

// Stats returns pipeline statistics for monitoring.
func (s *Service) Stats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		"state":          s.state.String(),
		"replay":         s.replay != nil,
		"speed":          s.speed,
		"watermark_ms":   s.watermarkMS,
		"playhead_ms":    s.playheadMS,
		"render_ms":      s.lastRenderMS,
		"emit_ratio":     s.filter.emitRatio(),
		"ledger_size":    s.collector.LedgerSize(),
		"pending_events": s.collector.Pending(),
	}
}

// RecentInsightFrames returns the retained insight frames, oldest first.
func (s *Service) RecentInsightFrames() []model.InsightFrame {
	return s.insight.RecentFrames()
}

// MinuteAggregates returns the per-minute analytics series.
func (s *Service) MinuteAggregates() []model.MinuteAggregate {
	return s.insight.MinuteAggregates()
}

// MinuteSeries returns the trailing portion of the minute series covering
// duration.
func (s *Service) MinuteSeries(duration time.Duration) []model.MinuteAggregate {
	return s.insight.MinuteSeries(duration)
}

// MatchReport returns the one-shot end-of-match report when available.
func (s *Service) MatchReport() (model.MatchReport, bool) {
	return s.insight.Report()
}
