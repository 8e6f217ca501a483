package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// OptionType represents the expected type of a configuration option value.
type OptionType string

const (
	// TypeString is a plain string value (the default for all config values).
	TypeString OptionType = "string"
	// TypeBool is a boolean value (true/false/yes/no/1/0/on/off).
	TypeBool OptionType = "bool"
	// TypeInt is an integer value.
	TypeInt OptionType = "int"
	// TypeFloat is a decimal value.
	TypeFloat OptionType = "float"
	// TypeDuration is a Go time.Duration value (e.g. "100ms", "2s").
	TypeDuration OptionType = "duration"
	// TypeEnum is a string restricted to ConfigOption.Values.
	TypeEnum OptionType = "enum"
)

// ConfigOption declares a single configuration option with its type, default,
// documentation, and environment variable override.
type ConfigOption struct {
	// Key is the option name as it appears in the config file (kebab-case).
	Key string
	// Type is the expected value type for validation.
	Type OptionType
	// Values lists the accepted values of a TypeEnum option.
	Values []string
	// Default is the default value as a string, or "" for no default.
	Default string
	// Description is a human-readable description of the option.
	Description string
	// Section is "" for global options, or a section name.
	Section string
	// EnvVar is the environment variable that overrides this option, or "".
	EnvVar string
}

// ConfigSchema declares the expected configuration options.
// It is used for validation, documentation, and env var mapping.
type ConfigSchema struct {
	options []*ConfigOption
	// index is keyed by section ("" for global) then option key.
	index map[string]map[string]*ConfigOption
}

// NewSchema creates a new empty ConfigSchema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{index: make(map[string]map[string]*ConfigOption)}
}

// Register adds options to the schema. A duplicate key within the same
// section replaces the earlier registration.
func (s *ConfigSchema) Register(opts ...ConfigOption) {
	for _, opt := range opts {
		ref := new(ConfigOption)
		*ref = opt
		if s.index[opt.Section] == nil {
			s.index[opt.Section] = make(map[string]*ConfigOption)
		}
		if prev := s.index[opt.Section][opt.Key]; prev != nil {
			*prev = opt
			continue
		}
		s.options = append(s.options, ref)
		s.index[opt.Section][opt.Key] = ref
	}
}

// Lookup returns the ConfigOption for a key in a given section ("" for global).
// Returns nil if the key is not registered.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	return s.index[section][key]
}

// resolveOption finds the definition used for key within section, falling
// back to the global definition.
func (s *ConfigSchema) resolveOption(section, key string) *ConfigOption {
	if opt := s.Lookup(section, key); opt != nil {
		return opt
	}
	return s.Lookup("", key)
}

// IsKnown returns true if the key is registered in the given section, or
// globally.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	return s.resolveOption(section, key) != nil
}

// Options returns the options registered for section ("" for global), in
// registration order.
func (s *ConfigSchema) Options(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns a sorted list of all registered non-empty section names.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.index))
	for sec := range s.index {
		if sec != "" {
			out = append(out, sec)
		}
	}
	slices.Sort(out)
	return out
}

// Resolve returns the effective value for key within section by checking, in
// order: (1) the environment variable declared for the option, (2) the config
// value (section first, then global), (3) the schema default. Returns "" if
// the key is not found anywhere.
func (s *ConfigSchema) Resolve(c *Config, section, key string) string {
	opt := s.resolveOption(section, key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if c != nil {
		if v, ok := c.GetSectionOption(section, key); ok {
			return v
		}
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ValidateConfig checks a loaded Config against the schema and returns a list
// of human-readable issues (empty if the config is valid). Validation includes:
//   - Unknown global options (not in schema)
//   - Unknown section options (not in schema for that section, and not global)
//   - Type mismatches for options with declared types
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := opt.Validate(value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}

	for section, opts := range c.Sections {
		for key, value := range opts {
			opt := s.resolveOption(section, key)
			if opt == nil {
				issues = append(issues, fmt.Sprintf("unknown option in [%s]: %q (value: %q)", section, key, value))
				continue
			}
			if err := opt.Validate(value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}

	slices.Sort(issues)
	return issues
}

// Validate checks that value matches the option's type.
func (o *ConfigOption) Validate(value string) error {
	switch o.Type {
	case TypeString, "":
		return nil
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeFloat:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("expected float, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	case TypeEnum:
		if !slices.Contains(o.Values, value) {
			return fmt.Errorf("expected one of %s, got %q", strings.Join(o.Values, ", "), value)
		}
	default:
		return fmt.Errorf("unknown option type %q", o.Type)
	}
	return nil
}

// FormatHelp returns a formatted, human-readable reference of all registered
// options in the schema, grouped by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder

	if globals := s.Options(""); len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}

	for _, sec := range s.Sections() {
		opts := s.Options(sec)
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range opts {
			writeOptionHelp(&b, o)
		}
	}

	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-20s %s", o.Key, o.Description)
	parts := make([]string, 0, 3)
	switch o.Type {
	case "", TypeString:
	case TypeEnum:
		parts = append(parts, "one of: "+strings.Join(o.Values, "|"))
	default:
		parts = append(parts, fmt.Sprintf("type: %s", o.Type))
	}
	if o.Default != "" {
		parts = append(parts, fmt.Sprintf("default: %s", o.Default))
	}
	if o.EnvVar != "" {
		parts = append(parts, fmt.Sprintf("env: %s", o.EnvVar))
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// Section names used by DefaultSchema.
const (
	SectionPlanner = "planner"
	SectionRun     = "run"
)

// DefaultSchema returns the schema declaring every goap configuration
// option.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.Register(
		ConfigOption{Key: "log.level", Type: TypeEnum, Values: []string{"debug", "info", "warn", "error"}, Default: "info", Description: "Minimum log level", EnvVar: "GOAP_LOG_LEVEL"},
		ConfigOption{Key: "log.format", Type: TypeEnum, Values: []string{"text", "json"}, Default: "text", Description: "Log output format", EnvVar: "GOAP_LOG_FORMAT"},
		ConfigOption{Key: "color", Type: TypeEnum, Values: []string{"auto", "always", "never"}, Default: "auto", Description: "Color mode"},

		ConfigOption{Key: "max-nodes", Section: SectionPlanner, Type: TypeInt, Default: "200", Description: "States explored per search before settling for a partial plan", EnvVar: "GOAP_MAX_NODES"},
		ConfigOption{Key: "heuristic-scale", Section: SectionPlanner, Type: TypeFloat, Default: "1", Description: "Multiplier applied to the bit-difference heuristic"},

		ConfigOption{Key: "mode", Section: SectionRun, Type: TypeEnum, Values: []string{"agent", "reactive"}, Default: "agent", Description: "Execution strategy for goap run"},
		ConfigOption{Key: "tick-interval", Section: SectionRun, Type: TypeDuration, Default: "100ms", Description: "Delay between behavior tree ticks"},
		ConfigOption{Key: "max-ticks", Section: SectionRun, Type: TypeInt, Default: "100", Description: "Ticks before goap run gives up"},
	)
	return s
}
