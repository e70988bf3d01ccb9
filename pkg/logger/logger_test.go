package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	log := Get()
	ctx := context.Background()

	log.Debug(ctx, "debug message", String("k", "v"))
	log.Info(ctx, "info message", Int("count", 3), Int64("big", 9), Float64("ratio", 0.5))
	log.Warn(ctx, "warn message", Bool("flag", true), Any("payload", map[string]int{"a": 1}))
	log.Error(ctx, "error message", Error(errors.New("boom")))
}

func TestNamedLogger(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	named := Named("pipeline")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "named message")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	cases := []struct {
		in      string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"", false},
		{"warn", false},
		{"warning", false},
		{"ERROR", false},
		{"verbose", true},
	}
	for _, c := range cases {
		if err := SetLevelString(c.in); (err != nil) != c.wantErr {
			t.Errorf("SetLevelString(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
		}
	}

	SetLevel(slog.LevelInfo)
}
