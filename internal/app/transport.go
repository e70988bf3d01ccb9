package app

import (
	"context"
	"time"

	"github.com/okian/matchpulse/pkg/logger"
	"github.com/okian/matchpulse/pkg/metrics"
)

// TransportState is the playback lifecycle state.
type TransportState int

const (
	TransportStopped TransportState = iota
	TransportRunning
	TransportPaused
)

// String implements fmt.Stringer.
func (t TransportState) String() string {
	switch t {
	case TransportRunning:
		return "running"
	case TransportPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Playback speed clamp and the backward-scrub detection threshold.
const (
	minPlaybackSpeed = 0.25
	maxPlaybackSpeed = 4.0

	scrubResetThresholdMS = 5000
)

// Start launches the output clock. Idempotent while already running or
// paused.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != TransportStopped {
		return nil
	}
	s.state = TransportRunning
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(ctx, s.stopCh, s.doneCh)

	s.log.Info(ctx, "pipeline started",
		logger.Int64("period_ms", s.periodMS),
		logger.Int64("delay_ms", s.delayMS),
		logger.Bool("replay", s.replay != nil),
	)
	return nil
}

// run drives composition at the fixed output period until stopped.
func (s *Service) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Duration(s.periodMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.Advance(ctx)
		}
	}
}

// Pause gates the output clock without clearing any buffers.
func (s *Service) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == TransportRunning {
		s.state = TransportPaused
	}
}

// Resume re-enables the output clock after Pause.
func (s *Service) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == TransportPaused {
		s.state = TransportRunning
	}
}

// Stop halts the clock and performs the full reset: ring buffers, event
// cursor, dedup ledger and all analytics accumulators return to their
// pre-ingestion state. Safe to call at any point, including repeatedly.
func (s *Service) Stop() {
	s.mu.Lock()
	wasRunning := s.state != TransportStopped
	s.state = TransportStopped
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.fullReset(context.Background(), "stop")
	s.mu.Unlock()

	if wasRunning && stopCh != nil {
		close(stopCh)
		<-doneCh
	}
}

// State returns the current transport state.
func (s *Service) State() TransportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetPlaybackSpeed clamps the multiplier to [0.25, 4.0]. In replay mode the
// render clock advances by period x speed per tick instead of real time.
func (s *Service) SetPlaybackSpeed(speed float64) float64 {
	if speed < minPlaybackSpeed {
		speed = minPlaybackSpeed
	}
	if speed > maxPlaybackSpeed {
		speed = maxPlaybackSpeed
	}
	s.mu.Lock()
	s.speed = speed
	s.mu.Unlock()
	metrics.UpdatePlaybackSpeed(speed)
	return speed
}

// Seek moves the replay playhead to tMS. A seek landing more than 5 s before
// the last-known event time is a backward scrub: the event cursor, dedup
// ledger and derived analytics state are reset so nothing stale survives the
// discontinuity. Forward seeks reset nothing.
func (s *Service) Seek(ctx context.Context, tMS int64) {
	if tMS < 0 {
		tMS = 0
	}

	backward := s.collector.LastEventTime()-tMS > scrubResetThresholdMS

	s.mu.Lock()
	if s.replay != nil {
		if endMS := int64(s.replay.end() * 1000); tMS > endMS {
			tMS = endMS
		}
		s.playheadMS = tMS
	}
	if backward {
		s.filter.reset()
	}
	s.mu.Unlock()

	if backward {
		s.collector.Rewind()
		s.insight.Reset()
		metrics.RecordTransportReset()
		s.log.Info(ctx, "backward scrub", logger.Int64("seek_ms", tMS))
	}
}
