package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GOAP_LOG_LEVEL", "GOAP_LOG_FORMAT", "GOAP_MAX_NODES"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestResolveDefaults(t *testing.T) {
	clearEnv(t)

	s, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := Settings{
		LogLevel:       slog.LevelInfo,
		LogFormat:      "text",
		Color:          "auto",
		MaxNodes:       200,
		HeuristicScale: 1,
		Mode:           "agent",
		TickInterval:   100 * time.Millisecond,
		MaxTicks:       100,
	}
	if *s != want {
		t.Fatalf("got %+v, want %+v", *s, want)
	}
}

func TestResolveFromConfig(t *testing.T) {
	clearEnv(t)

	c, err := LoadFromReader(strings.NewReader(`log.level debug
log.format json
[planner]
heuristic-scale 0.5
[run]
mode reactive
tick-interval 5ms
max-ticks 7
`))
	if err != nil {
		t.Fatalf("LoadFromReader returned error: %v", err)
	}
	t.Setenv("GOAP_MAX_NODES", "25")

	s, err := Resolve(c)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.LogLevel != slog.LevelDebug || s.LogFormat != "json" {
		t.Errorf("unexpected logging settings: %+v", s)
	}
	if s.MaxNodes != 25 || s.HeuristicScale != 0.5 {
		t.Errorf("unexpected planner settings: %+v", s)
	}
	if s.Mode != "reactive" || s.TickInterval != 5*time.Millisecond || s.MaxTicks != 7 {
		t.Errorf("unexpected run settings: %+v", s)
	}
}

func TestResolveRejectsInvalid(t *testing.T) {
	clearEnv(t)

	c := NewConfig()
	c.SetSectionOption(SectionRun, "tick-interval", "soon")
	if _, err := Resolve(c); err == nil || !strings.Contains(err.Error(), "[run] tick-interval") {
		t.Fatalf("expected tick-interval error, got %v", err)
	}

	t.Setenv("GOAP_LOG_LEVEL", "loud")
	if _, err := Resolve(nil); err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Fatalf("expected log.level error, got %v", err)
	}
}
