// Package simfeed generates a plausible football telemetry stream for local
// development and load testing. It is not a match engine; positions and
// events only need to be coherent enough to exercise the pipeline.
package simfeed

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/domain/types"
	"github.com/okian/matchpulse/pkg/logger"
)

// Sink receives generated ticks. The pipeline service satisfies this.
type Sink interface {
	PushTick(ctx context.Context, tick *model.Tick)
}

// Feeder drives a simulated match into a Sink at irregular intervals.
type Feeder struct {
	matchID  uuid.UUID
	sink     Sink
	rng      *rand.Rand
	duration time.Duration
	log      logger.Logger

	clockMS   int64
	owner     int
	anchors   [types.EntityCount]types.Vec3
	positions [types.EntityCount]types.Vec3
	ball      types.Vec3
}

// Option configures a Feeder.
type Option func(*Feeder)

// WithSeed fixes the random seed for reproducible runs.
func WithSeed(seed int64) Option {
	return func(f *Feeder) { f.rng = rand.New(rand.NewSource(seed)) }
}

// WithDuration sets the simulated match length. Default is 6 minutes, long
// enough to produce several minute aggregates without a real 90.
func WithDuration(d time.Duration) Option {
	return func(f *Feeder) {
		if d > 0 {
			f.duration = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(f *Feeder) {
		if log != nil {
			f.log = log
		}
	}
}

// New creates a Feeder pushing into sink.
func New(sink Sink, opts ...Option) *Feeder {
	f := &Feeder{
		matchID:  uuid.New(),
		sink:     sink,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		duration: 6 * time.Minute,
		owner:    types.NoTrack,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.Get().Named("simfeed")
	}
	f.anchors = formationAnchors()
	f.positions = f.anchors
	f.ball = types.Vec3{X: types.PitchLengthM / 2, Y: types.PitchWidthM / 2}
	// Event times under a second parse as match minutes downstream, so the
	// match clock starts at one second.
	f.clockMS = 1000
	return f
}

// MatchID returns the id of the simulated match.
func (f *Feeder) MatchID() uuid.UUID { return f.matchID }

// Roster returns labeling entries for the simulated squads.
func (f *Feeder) Roster() model.Roster {
	roster := make(model.Roster, types.EntityCount)
	for i := 0; i < types.EntityCount; i++ {
		team := "A"
		kit := i + 1
		if types.TeamOf(i) == types.TeamB {
			team = "B"
			kit = i - types.TeamSize + 1
		}
		roster[i] = model.RosterEntry{
			Name: "Player " + team + "-" + strconv.Itoa(kit),
			Kit:  kit,
		}
	}
	return roster
}

// Run feeds the simulated match until the context is cancelled or the match
// clock runs out, then emits the terminal event. Blocking.
func (f *Feeder) Run(ctx context.Context) error {
	f.log.Info(ctx, "simulated match starting",
		logger.String("match_id", f.matchID.String()),
		logger.String("duration", f.duration.String()),
	)
	endMS := f.clockMS + f.duration.Milliseconds()

	for f.clockMS < endMS {
		// Irregular producer cadence, 16 to 48 ms between ticks.
		step := int64(16 + f.rng.Intn(33))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(step) * time.Millisecond):
		}
		f.clockMS += step
		f.sink.PushTick(ctx, f.nextTick(step))
	}

	f.sink.PushTick(ctx, &model.Tick{
		Timestamp: f.clockMS,
		Ball:      f.ballSample(),
		Events: []model.RawEvent{{
			Type:   "full_time",
			Time:   float64(f.clockMS),
			Actor:  types.NoTrack,
			Target: types.NoTrack,
			Pos:    f.ball,
		}},
	})
	f.log.Info(ctx, "simulated match finished", logger.String("match_id", f.matchID.String()))
	return nil
}

// nextTick advances the toy model by dt milliseconds and packages the state.
func (f *Feeder) nextTick(dtMS int64) *model.Tick {
	dt := float64(dtMS) / 1000

	tick := &model.Tick{
		Timestamp: f.clockMS,
		Entities:  make([]model.EntitySample, 0, types.EntityCount),
	}

	tick.Events = f.advanceBall(dt)

	for i := 0; i < types.EntityCount; i++ {
		f.drift(i, dt)
		tick.Entities = append(tick.Entities, model.EntitySample{
			Track:   i,
			Pos:     f.positions[i],
			Vel:     f.positions[i].Sub(f.anchors[i]).Scale(0.1),
			State:   "moving",
			Stamina: 1 - float64(f.clockMS)/float64(f.duration.Milliseconds())*0.4,
		})
	}

	tick.Ball = f.ballSample()

	// Occasional auxiliary payload with freshly sampled pressure grids.
	if f.rng.Intn(20) == 0 {
		tick.Aux = &model.Aux{
			PressureA: f.pressureGrid(types.TeamA),
			PressureB: f.pressureGrid(types.TeamB),
			Counters:  map[string]float64{"sim_clock_ms": float64(f.clockMS)},
		}
	}
	return tick
}

// advanceBall moves the ball toward the current owner and hands possession
// around, emitting pass and occasional shot/goal events.
func (f *Feeder) advanceBall(dt float64) []model.RawEvent {
	var evs []model.RawEvent

	if f.owner == types.NoTrack {
		f.owner = f.nearestPlayer(f.ball)
	}

	to := f.positions[f.owner].Sub(f.ball)
	dist := to.Norm()
	if dist > 0.5 {
		// Ball travelling to the current owner.
		speed := math.Min(18, dist/dt)
		f.ball = f.ball.Add(to.Scale(speed * dt / dist))
		return evs
	}

	// Owner has the ball; sometimes release a pass to a teammate.
	f.ball = f.positions[f.owner]
	if f.rng.Float64() < 0.02 {
		next := f.teammateOf(f.owner)
		evs = append(evs, model.RawEvent{
			Type:   "pass",
			Time:   float64(f.clockMS),
			Actor:  f.owner,
			Target: next,
			Pos:    f.ball,
		})
		f.owner = next
	} else if f.rng.Float64() < 0.002 {
		evs = append(evs, model.RawEvent{
			Type:   "shot",
			Time:   float64(f.clockMS),
			Actor:  f.owner,
			Target: types.NoTrack,
			Pos:    f.ball,
		})
		if f.rng.Float64() < 0.3 {
			evs = append(evs, model.RawEvent{
				Type:   "goal",
				Time:   float64(f.clockMS),
				Actor:  f.owner,
				Target: types.NoTrack,
				Pos:    f.ball,
			})
		}
		// Turnover after a shot.
		f.owner = f.nearestOpponent(f.owner)
	}
	return evs
}

func (f *Feeder) ballSample() model.BallSample {
	return model.BallSample{
		Pos:       types.Vec3{X: f.ball.X, Y: f.ball.Y},
		Possessor: f.owner,
	}
}

// drift nudges a player around its formation anchor with bounded noise.
func (f *Feeder) drift(track int, dt float64) {
	pull := f.anchors[track].Sub(f.positions[track]).Scale(0.5 * dt)
	noise := types.Vec3{
		X: (f.rng.Float64() - 0.5) * 4 * dt,
		Y: (f.rng.Float64() - 0.5) * 4 * dt,
	}
	f.positions[track] = f.positions[track].Add(pull).Add(noise)
	f.positions[track].X = clamp(f.positions[track].X, 0, types.PitchLengthM)
	f.positions[track].Y = clamp(f.positions[track].Y, 0, types.PitchWidthM)
}

func (f *Feeder) nearestPlayer(p types.Vec3) int {
	best, bestD := 0, math.Inf(1)
	for i := 0; i < types.EntityCount; i++ {
		if d := f.positions[i].DistXY(p); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func (f *Feeder) nearestOpponent(track int) int {
	team := types.TeamOf(track)
	best, bestD := types.NoTrack, math.Inf(1)
	for i := 0; i < types.EntityCount; i++ {
		if types.TeamOf(i) == team {
			continue
		}
		if d := f.positions[i].DistXY(f.ball); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func (f *Feeder) teammateOf(track int) int {
	team := types.TeamOf(track)
	for {
		next := f.rng.Intn(types.EntityCount)
		if next != track && types.TeamOf(next) == team {
			return next
		}
	}
}

// pressureGrid samples a 28x18 grid peaked around the current squad centroid.
func (f *Feeder) pressureGrid(team types.Team) []float64 {
	var cx, cy float64
	lo, hi := 0, types.TeamSize
	if team == types.TeamB {
		lo, hi = types.TeamSize, types.EntityCount
	}
	for i := lo; i < hi; i++ {
		cx += f.positions[i].X
		cy += f.positions[i].Y
	}
	cx /= types.TeamSize
	cy /= types.TeamSize

	grid := make([]float64, types.PressureCols*types.PressureRows)
	cellW := float64(types.PitchLengthM) / types.PressureCols
	cellH := float64(types.PitchWidthM) / types.PressureRows
	for col := 0; col < types.PressureCols; col++ {
		for row := 0; row < types.PressureRows; row++ {
			x := (float64(col) + 0.5) * cellW
			y := (float64(row) + 0.5) * cellH
			d := math.Hypot(x-cx, y-cy)
			grid[row*types.PressureCols+col] = 3.0 * math.Exp(-d*d/800)
		}
	}
	return grid
}

// formationAnchors lays both squads out in a 4-4-2, mirrored per team.
func formationAnchors() [types.EntityCount]types.Vec3 {
	// Fractions of pitch length per line: keeper, back four, mid four, two up.
	lines := []struct {
		x float64
		n int
	}{{0.05, 1}, {0.25, 4}, {0.5, 4}, {0.72, 2}}

	var anchors [types.EntityCount]types.Vec3
	idx := 0
	for _, line := range lines {
		for k := 0; k < line.n; k++ {
			y := types.PitchWidthM * (float64(k) + 1) / (float64(line.n) + 1)
			anchors[idx] = types.Vec3{X: types.PitchLengthM * line.x, Y: y}
			anchors[idx+types.TeamSize] = types.Vec3{X: types.PitchLengthM * (1 - line.x), Y: y}
			idx++
		}
	}
	return anchors
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
