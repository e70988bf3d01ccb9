// Package analytics derives spatial and statistical insight from the
// published snapshot stream. It is a read-only subscriber: a pure fold over
// snapshots that never writes back into pipeline-owned state.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/types"
	"github.com/okian/matchpulse/pkg/logger"
	"github.com/okian/matchpulse/pkg/metrics"
)

// Thresholds and windows.
const (
	// passWindowMS is the timing-only fallback for classifying a same-team
	// possessor change as a pass. Changing it is a behavior change; see the
	// classification log lines.
	passWindowMS = 500

	// laneWindowMS is the trailing window for lane load shares.
	laneWindowMS = 1000

	// insightWindowMS bounds the sliding insight-frame retention.
	insightWindowMS = 60_000

	overheatThreshold  = 0.65
	imbalanceThreshold = 0.45

	topHubCount = 3
)

// Warning flags attached to insight frames.
const (
	FlagOverheat      = "overheat"
	FlagLaneImbalance = "lane_imbalance"
)

type laneEvent struct {
	timeMS int64
	lane   int
}

// Consumer folds published snapshots into insight frames, transition
// matrices, hub scores, minute aggregates and the end-of-match report.
type Consumer struct {
	mu  sync.Mutex
	log logger.Logger

	hubs hubAccumulator

	// Transition state.
	matrixA          model.TransitionMatrix
	matrixB          model.TransitionMatrix
	lastZone         int
	lastZoneKnown    bool
	lastZoneChangeMS int64
	lastTransition   model.TransitionKind

	// Possession state.
	lastPossessor  int
	lastRenderMS   int64
	haveLastRender bool

	laneEvents []laneEvent
	frames     []model.InsightFrame
	minutes    map[int]*model.MinuteAggregate

	report *model.MatchReport

	onFrame  func(model.InsightFrame)
	onReport func(model.MatchReport)
}

// Option applies a configuration option to the Consumer.
type Option func(*Consumer)

// WithHubWeights sets the hub score weights.
func WithHubWeights(possession, reception, release float64) Option {
	return func(c *Consumer) {
		if possession >= 0 && reception >= 0 && release >= 0 {
			c.hubs.wPossession = possession
			c.hubs.wReception = reception
			c.hubs.wRelease = release
		}
	}
}

// WithFrameCallback registers the insight-frame subscriber.
func WithFrameCallback(fn func(model.InsightFrame)) Option {
	return func(c *Consumer) { c.onFrame = fn }
}

// WithReportCallback registers the match-report subscriber.
func WithReportCallback(fn func(model.MatchReport)) Option {
	return func(c *Consumer) { c.onReport = fn }
}

// WithLogger sets the consumer's logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Consumer) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an analytics consumer.
func New(opts ...Option) *Consumer {
	c := &Consumer{
		hubs:          newHubAccumulator(),
		lastPossessor: types.NoTrack,
		minutes:       make(map[int]*model.MinuteAggregate),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consume folds one published snapshot. It must never mutate the snapshot.
func (c *Consumer) Consume(ctx context.Context, snap *model.Snapshot) {
	c.mu.Lock()

	frame := model.InsightFrame{
		RenderTime: snap.RenderTime,
		BallZone:   ZoneOf(snap.Ball.Pos),
		BallLane:   LaneOf(snap.Ball.Pos),
	}

	frame.Pressure = c.samplePressure(snap)
	c.accruePossession(snap)
	c.classifyTransition(ctx, snap, frame.BallZone)
	frame.LastTransition = c.lastTransition
	frame.LaneLoad = c.laneLoad(snap.RenderTime)

	scores := c.hubs.scores()
	frame.Concentration = Gini(scores)
	frame.TopHubs = c.hubs.top(topHubCount)

	if frame.Concentration >= overheatThreshold {
		frame.Flags = append(frame.Flags, FlagOverheat)
	}
	if maxShare(frame.LaneLoad) >= imbalanceThreshold {
		frame.Flags = append(frame.Flags, FlagLaneImbalance)
	}

	c.bucketMinute(snap, frame.Pressure)
	c.appendFrame(frame)

	c.lastPossessor = snap.Ball.Owner
	c.lastRenderMS = snap.RenderTime
	c.haveLastRender = true

	var report *model.MatchReport
	if c.report == nil && hasTerminalEvent(snap) {
		r := c.buildReport()
		c.report = &r
		report = &r
	}

	onFrame, onReport := c.onFrame, c.onReport
	c.mu.Unlock()

	metrics.RecordInsightFrame()
	if onFrame != nil {
		onFrame(frame)
	}
	if report != nil && onReport != nil {
		onReport(*report)
	}
}

// samplePressure samples the defending team's grid at the ball position; when
// possession is contested or unknown it takes the max of both teams' values.
func (c *Consumer) samplePressure(snap *model.Snapshot) float64 {
	if snap.Aux == nil {
		return 0
	}
	switch types.TeamOf(snap.Ball.Owner) {
	case types.TeamA:
		return SamplePressure(snap.Aux.PressureB, snap.Ball.Pos)
	case types.TeamB:
		return SamplePressure(snap.Aux.PressureA, snap.Ball.Pos)
	default:
		a := SamplePressure(snap.Aux.PressureA, snap.Ball.Pos)
		b := SamplePressure(snap.Aux.PressureB, snap.Ball.Pos)
		if a > b {
			return a
		}
		return b
	}
}

// accruePossession credits elapsed real time to the current possessor and
// counts receptions and releases on possessor change.
func (c *Consumer) accruePossession(snap *model.Snapshot) {
	owner := snap.Ball.Owner
	if c.haveLastRender && types.ValidTrack(owner) {
		if dt := float64(snap.RenderTime-c.lastRenderMS) / 1000; dt > 0 {
			c.hubs.possessionSec[owner] += dt
		}
	}
	if owner == c.lastPossessor {
		return
	}
	if types.ValidTrack(owner) {
		c.hubs.receptions[owner]++
	}
	if types.ValidTrack(c.lastPossessor) {
		c.hubs.releases[c.lastPossessor]++
	}
}

// classifyTransition classifies a zone change as carry, pass, or unknown and
// increments the owning team's transition matrix.
func (c *Consumer) classifyTransition(ctx context.Context, snap *model.Snapshot, zone int) {
	if !c.lastZoneKnown {
		c.lastZone = zone
		c.lastZoneKnown = true
		c.lastZoneChangeMS = snap.RenderTime
		return
	}
	if zone == c.lastZone {
		return
	}

	from, to := c.lastZone, zone
	owner := snap.Ball.Owner
	prev := c.lastPossessor

	kind := model.TransitionUnknown
	team := types.TeamOf(owner)

	switch {
	case owner == prev && types.ValidTrack(owner):
		kind = model.TransitionCarry
	case types.ValidTrack(owner) && types.ValidTrack(prev) && types.TeamOf(owner) == types.TeamOf(prev):
		if hasPassEventBetween(snap, prev, owner) {
			kind = model.TransitionPass
			if c.log != nil {
				c.log.Debug(ctx, "pass transition", logger.String("reason", "event_confirmed"),
					logger.Int("from", from), logger.Int("to", to))
			}
		} else if snap.RenderTime-c.lastZoneChangeMS <= passWindowMS {
			kind = model.TransitionPass
			if c.log != nil {
				c.log.Debug(ctx, "pass transition", logger.String("reason", "timing_window"),
					logger.Int("from", from), logger.Int("to", to))
			}
		}
	}

	if team != types.TeamUnknown {
		switch team {
		case types.TeamA:
			c.matrixA[from][to]++
		case types.TeamB:
			c.matrixB[from][to]++
		}
	}
	metrics.RecordZoneTransition(string(kind))

	c.lastTransition = kind
	c.lastZone = zone
	c.lastZoneChangeMS = snap.RenderTime
	c.laneEvents = append(c.laneEvents, laneEvent{timeMS: snap.RenderTime, lane: ZoneLane(zone)})

	c.minuteBucket(minuteOf(snap.RenderTime)).Transitions++
}

// laneLoad returns the per-lane share of transitions in the trailing window,
// trimming aged-out entries. Shares sum to 1 when any transition is present.
func (c *Consumer) laneLoad(nowMS int64) [types.ZoneLanes]float64 {
	cutoff := nowMS - laneWindowMS
	i := 0
	for i < len(c.laneEvents) && c.laneEvents[i].timeMS < cutoff {
		i++
	}
	c.laneEvents = c.laneEvents[i:]

	var load [types.ZoneLanes]float64
	if len(c.laneEvents) == 0 {
		return load
	}
	for _, ev := range c.laneEvents {
		load[ev.lane]++
	}
	total := float64(len(c.laneEvents))
	for l := range load {
		load[l] /= total
	}
	return load
}

// minuteBucket returns the aggregate for minute, creating it on first touch.
// Transitions classified on the first snapshot of a minute land before
// bucketMinute runs, so callers must not assume the bucket already exists.
func (c *Consumer) minuteBucket(minute int) *model.MinuteAggregate {
	m := c.minutes[minute]
	if m == nil {
		m = &model.MinuteAggregate{Minute: minute}
		c.minutes[minute] = m
	}
	return m
}

func (c *Consumer) bucketMinute(snap *model.Snapshot, pressure float64) {
	m := c.minuteBucket(minuteOf(snap.RenderTime))
	m.Snapshots++
	m.PressureSum += pressure
	m.SpeedSum += snap.Ball.Speed
}

func (c *Consumer) appendFrame(frame model.InsightFrame) {
	c.frames = append(c.frames, frame)
	cutoff := frame.RenderTime - insightWindowMS
	i := 0
	for i < len(c.frames) && c.frames[i].RenderTime < cutoff {
		i++
	}
	c.frames = c.frames[i:]
}

// RecentFrames returns a copy of the retained insight frames, oldest first.
func (c *Consumer) RecentFrames() []model.InsightFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.InsightFrame, len(c.frames))
	copy(out, c.frames)
	return out
}

// MinuteAggregates returns the per-minute series, ordered by minute.
func (c *Consumer) MinuteAggregates() []model.MinuteAggregate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minuteSeriesLocked()
}

// MinuteSeries returns the trailing portion of the minute series covering
// duration.
func (c *Consumer) MinuteSeries(duration time.Duration) []model.MinuteAggregate {
	c.mu.Lock()
	defer c.mu.Unlock()
	series := c.minuteSeriesLocked()
	n := int(duration / time.Minute)
	if n <= 0 || n >= len(series) {
		return series
	}
	return series[len(series)-n:]
}

func (c *Consumer) minuteSeriesLocked() []model.MinuteAggregate {
	out := make([]model.MinuteAggregate, 0, len(c.minutes))
	for _, m := range c.minutes {
		out = append(out, *m)
	}
	sortMinutes(out)
	return out
}

// Report returns the one-shot match report when it has been emitted.
func (c *Consumer) Report() (model.MatchReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report == nil {
		return model.MatchReport{}, false
	}
	return *c.report, true
}

// Reset restores all accumulators to their initial state.
func (c *Consumer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hubs.reset()
	c.matrixA = model.TransitionMatrix{}
	c.matrixB = model.TransitionMatrix{}
	c.lastZoneKnown = false
	c.lastZone = 0
	c.lastZoneChangeMS = 0
	c.lastTransition = ""
	c.lastPossessor = types.NoTrack
	c.haveLastRender = false
	c.lastRenderMS = 0
	c.laneEvents = c.laneEvents[:0]
	c.frames = c.frames[:0]
	c.minutes = make(map[int]*model.MinuteAggregate)
	c.report = nil
}

func minuteOf(ms int64) int {
	return int(ms / 60_000)
}

func maxShare(load [types.ZoneLanes]float64) float64 {
	max := 0.0
	for _, v := range load {
		if v > max {
			max = v
		}
	}
	return max
}

func hasTerminalEvent(snap *model.Snapshot) bool {
	for _, e := range snap.Events {
		if e.Terminal() {
			return true
		}
	}
	return false
}

func hasPassEventBetween(snap *model.Snapshot, a, b int) bool {
	for _, e := range snap.Events {
		if !e.PassLike() {
			continue
		}
		if (e.Actor == a && e.Target == b) || (e.Actor == b && e.Target == a) {
			return true
		}
	}
	return false
}
