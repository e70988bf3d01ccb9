// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions follow the rest of the module: defaults come from New, a YAML
// file and MATCHPULSE_-prefixed env vars may layer on top, and callers get a
// validated copy.
package config

import "context"

// Config contains process configuration for the telemetry pipeline.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for the pull accessors.
	Addr string `koanf:"addr"`

	// TickPeriodMS is the fixed output clock period of the compositor.
	TickPeriodMS int `koanf:"tick_period_ms"`

	// RenderDelayMS is how far the render timestamp trails the ingest watermark.
	RenderDelayMS int `koanf:"render_delay_ms"`

	// EventWindowMS is the half-width of the event collection window.
	EventWindowMS int `koanf:"event_window_ms"`

	// LedgerMax and LedgerKeep bound the event dedup ledger: once the ledger
	// grows past LedgerMax it is trimmed to the newest LedgerKeep keys.
	LedgerMax  int `koanf:"ledger_max"`
	LedgerKeep int `koanf:"ledger_keep"`

	// AOIRadiusM is the high-priority radius around the ball in meters.
	// AOIMinHigh is the minimum number of high-priority entities.
	AOIRadiusM float64 `koanf:"aoi_radius_m"`
	AOIMinHigh int     `koanf:"aoi_min_high"`

	// DeltaFilter enables snapshot suppression outside replay mode.
	DeltaFilter bool `koanf:"delta_filter"`

	// Hub score weights: possession seconds, receptions, releases.
	HubPossessionWeight float64 `koanf:"hub_possession_weight"`
	HubReceptionWeight  float64 `koanf:"hub_reception_weight"`
	HubReleaseWeight    float64 `koanf:"hub_release_weight"`
}

// New returns the configuration defaults. Context is accepted first to match
// the module-wide convention; it is reserved for future loading hooks.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		TickPeriodMS:        50,
		RenderDelayMS:       100,
		EventWindowMS:       500,
		LedgerMax:           50,
		LedgerKeep:          25,
		AOIRadiusM:          12.0,
		AOIMinHigh:          6,
		DeltaFilter:         true,
		HubPossessionWeight: 1.0,
		HubReceptionWeight:  2.0,
		HubReleaseWeight:    2.0,
	}
}
