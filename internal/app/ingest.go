package app

import (
	"context"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/ring"
	"github.com/okian/matchpulse/internal/domain/types"
	"github.com/okian/matchpulse/pkg/logger"
	"github.com/okian/matchpulse/pkg/metrics"
)

// PushTick ingests one irregular-rate simulator update. Malformed ticks are
// logged and dropped; they never abort an in-progress match. A timestamp
// behind the ingest watermark (upstream scrubbing that bypassed the
// controller) triggers a full reset followed by normal ingestion.
func (s *Service) PushTick(ctx context.Context, tick *model.Tick) {
	entries, ok := s.decodeTick(ctx, tick)
	if !ok {
		metrics.RecordTickMalformed()
		return
	}

	s.mu.Lock()
	if s.haveWatermark && tick.Timestamp < s.watermarkMS {
		s.log.Warn(ctx, "non-monotonic ingest time, resetting pipeline",
			logger.Int64("tick_ms", tick.Timestamp),
			logger.Int64("watermark_ms", s.watermarkMS),
		)
		s.fullReset(ctx, "ingest_regression")
	}

	tSec := float64(tick.Timestamp) / 1000

	// The zero-vector position doubles as the no-ball sentinel: a tick may
	// carry entities only, and a phantom ball entry would hand possession to
	// track 0.
	if !tick.Ball.Pos.IsZero() || tick.Ball.Vel != nil {
		s.history.Ball().Append(ring.Entry{
			Time:      tSec,
			Pos:       tick.Ball.Pos,
			Vel:       s.deriveBallVelocity(tick, tSec),
			Possessor: possessorOrNone(tick.Ball.Possessor),
		})
	}

	for _, e := range entries {
		s.history.Player(e.Track).Append(ring.Entry{
			Time:      tSec,
			Pos:       e.Pos,
			Vel:       e.Vel,
			State:     e.State,
			Stamina:   e.Stamina,
			Possessor: types.NoTrack,
		})
	}

	if tick.Aux != nil {
		s.aux = copyAux(tick.Aux)
	}

	s.watermarkMS = tick.Timestamp
	s.haveWatermark = true
	s.mu.Unlock()

	s.collector.Add(tick.Events)
	metrics.RecordTickIngested()
}

// decodeTick validates the tick and normalizes both accepted wire shapes
// into per-entity records. No shape branch leaks past this point.
func (s *Service) decodeTick(ctx context.Context, tick *model.Tick) ([]model.EntitySample, bool) {
	if tick == nil {
		s.log.Warn(ctx, "nil tick ignored")
		return nil, false
	}
	if tick.Timestamp < 0 {
		s.log.Warn(ctx, "tick with negative timestamp ignored",
			logger.Int64("tick_ms", tick.Timestamp))
		return nil, false
	}

	switch tick.Shape() {
	case model.ShapePerEntity:
		entries := make([]model.EntitySample, 0, len(tick.Entities))
		for _, e := range tick.Entities {
			if !types.ValidTrack(e.Track) {
				// Producer-contract breach: out-of-range track ids would
				// corrupt team attribution, so be loud and drop the tick.
				s.log.Error(ctx, "tick carries invalid track id",
					logger.Int("track", e.Track))
				return nil, false
			}
			entries = append(entries, e)
		}
		return entries, true

	case model.ShapePacked:
		n := len(tick.Packed)
		if n%model.PackedFloatsPerEntity != 0 || n/model.PackedFloatsPerEntity > types.EntityCount {
			s.log.Error(ctx, "packed tick has wrong entity count",
				logger.Int("floats", n))
			return nil, false
		}
		count := n / model.PackedFloatsPerEntity
		entries := make([]model.EntitySample, 0, count)
		for track := 0; track < count; track++ {
			base := track * model.PackedFloatsPerEntity
			entries = append(entries, model.EntitySample{
				Track: track,
				Pos:   types.Vec3{X: tick.Packed[base], Y: tick.Packed[base+1]},
				Vel:   types.Vec3{X: tick.Packed[base+2], Y: tick.Packed[base+3]},
			})
		}
		return entries, true

	default:
		// A ball-only tick is still useful; a fully empty one is not.
		if tick.Ball.Pos.IsZero() && tick.Ball.Vel == nil && len(tick.Events) == 0 && tick.Aux == nil {
			s.log.Warn(ctx, "empty tick ignored", logger.Int64("tick_ms", tick.Timestamp))
			return nil, false
		}
		return nil, true
	}
}

// deriveBallVelocity returns the supplied velocity, or computes one from the
// previous ball sample. Caller holds s.mu.
func (s *Service) deriveBallVelocity(tick *model.Tick, tSec float64) types.Vec3 {
	if tick.Ball.Vel != nil {
		return *tick.Ball.Vel
	}
	prev, ok := s.history.Ball().Latest()
	if !ok {
		return types.Vec3{}
	}
	dt := tSec - prev.Time
	if dt <= epsilonSeconds {
		return types.Vec3{}
	}
	return tick.Ball.Pos.Sub(prev.Pos).Scale(1 / dt)
}

func possessorOrNone(track int) int {
	if types.ValidTrack(track) {
		return track
	}
	return types.NoTrack
}

func copyAux(in *model.Aux) *model.Aux {
	out := &model.Aux{}
	if in.PressureA != nil {
		out.PressureA = append([]float64(nil), in.PressureA...)
	}
	if in.PressureB != nil {
		out.PressureB = append([]float64(nil), in.PressureB...)
	}
	if in.Counters != nil {
		out.Counters = make(map[string]float64, len(in.Counters))
		for k, v := range in.Counters {
			out.Counters[k] = v
		}
	}
	return out
}
