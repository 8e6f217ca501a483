package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Settings is the typed view of a Config, resolved against DefaultSchema.
type Settings struct {
	LogLevel  slog.Level
	LogFormat string
	Color     string

	MaxNodes       int
	HeuristicScale float64

	Mode         string
	TickInterval time.Duration
	MaxTicks     int
}

// Resolve computes the effective Settings for c. A nil c resolves env vars
// and defaults only. Values that fail validation are errors here, even
// though loading only warns about them.
func Resolve(c *Config) (*Settings, error) {
	schema := DefaultSchema()
	get := func(section, key string) (string, error) {
		v := schema.Resolve(c, section, key)
		if err := schema.resolveOption(section, key).Validate(v); err != nil {
			if section == "" {
				return "", fmt.Errorf("%s: %w", key, err)
			}
			return "", fmt.Errorf("[%s] %s: %w", section, key, err)
		}
		return v, nil
	}

	var (
		s   Settings
		v   string
		err error
	)

	if v, err = get("", "log.level"); err != nil {
		return nil, err
	}
	if err = s.LogLevel.UnmarshalText([]byte(v)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if s.LogFormat, err = get("", "log.format"); err != nil {
		return nil, err
	}
	if s.Color, err = get("", "color"); err != nil {
		return nil, err
	}

	if v, err = get(SectionPlanner, "max-nodes"); err != nil {
		return nil, err
	}
	s.MaxNodes, _ = strconv.Atoi(v)
	if v, err = get(SectionPlanner, "heuristic-scale"); err != nil {
		return nil, err
	}
	s.HeuristicScale, _ = strconv.ParseFloat(v, 64)

	if s.Mode, err = get(SectionRun, "mode"); err != nil {
		return nil, err
	}
	if v, err = get(SectionRun, "tick-interval"); err != nil {
		return nil, err
	}
	s.TickInterval, _ = time.ParseDuration(v)
	if v, err = get(SectionRun, "max-ticks"); err != nil {
		return nil, err
	}
	s.MaxTicks, _ = strconv.Atoi(v)

	return &s, nil
}
