// Command simfeed runs the pipeline headless against the synthetic match
// feeder and prints the end-of-match report. It doubles as an executable
// integration harness.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/matchpulse/internal/app"
	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/internal/simfeed"
	"github.com/okian/matchpulse/pkg/logger"
)

const defaultDuration = 6 * time.Minute

func main() {
	var (
		duration = flag.Duration("duration", defaultDuration, "Simulated match length")
		seed     = flag.Int64("seed", 0, "Random seed (0 means time-based)")
		verbose  = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := app.New(app.WithLogger(log))

	reportCh := make(chan model.MatchReport, 1)
	svc.OnMatchReport(func(r model.MatchReport) {
		select {
		case reportCh <- r:
		default:
		}
	})

	opts := []simfeed.Option{
		simfeed.WithDuration(*duration),
		simfeed.WithLogger(log.Named("simfeed")),
	}
	if *seed != 0 {
		opts = append(opts, simfeed.WithSeed(*seed))
	}
	feeder := simfeed.New(svc, opts...)
	svc.SetRosters(feeder.Roster())

	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start pipeline: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	if err := feeder.Run(ctx); err != nil {
		log.Warn(ctx, "feed interrupted", logger.Error(err))
		return
	}

	// The terminal event rides the last tick; give the output clock a moment
	// to compose the snapshot that carries it.
	select {
	case report := <-reportCh:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Error(ctx, "failed to encode report", logger.Error(err))
		}
	case <-time.After(5 * time.Second):
		log.Error(ctx, "no match report emitted")
	case <-ctx.Done():
	}
}
