// Package scenario loads declarative GOAP domains from YAML.
//
// A scenario names the predicate keys, the expressions that project raw
// facts onto them, the initial facts, the goal and the actions. Documents are
// validated against an embedded JSON schema before they are decoded, so a
// Scenario that parses is structurally sound; Build reports the remaining
// semantic errors (unknown keys, bad expressions).
package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario reports a document that does not match the scenario
// schema.
var ErrInvalidScenario = errors.New("scenario: invalid document")

//go:embed scenario.schema.json
var schemaJSON string

const schemaURL = "https://github.com/joeycumines/go-goap/scenario.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString(schemaURL, schemaJSON)
})

// Scenario is a decoded scenario document.
type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Keys        []string          `yaml:"keys"`
	Converters  map[string]string `yaml:"converters,omitempty"`
	Facts       map[string]any    `yaml:"facts,omitempty"`
	Goal        map[string]bool   `yaml:"goal"`
	Actions     []Action          `yaml:"actions"`
}

// Action declares one planning operator and the scripted behavior that
// stands in for it when the scenario is run.
type Action struct {
	Name    string          `yaml:"name"`
	Cost    *float64        `yaml:"cost,omitempty"`
	Pre     map[string]bool `yaml:"pre,omitempty"`
	Effects []Effect        `yaml:"effects,omitempty"`
	// Script lists the statuses returned by successive runs; the last one
	// repeats. Empty means always success.
	Script []string `yaml:"script,omitempty"`
}

// Effect declares one change. Exactly one of Set, Delta, Assign and
// Transform is given; Outcome defaults to true for the last three.
type Effect struct {
	Key       string   `yaml:"key"`
	Set       *bool    `yaml:"set,omitempty"`
	Delta     *float64 `yaml:"delta,omitempty"`
	Assign    any      `yaml:"assign,omitempty"`
	Transform string   `yaml:"transform,omitempty"`
	Outcome   *bool    `yaml:"outcome,omitempty"`
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse validates data against the scenario schema and decodes it.
func Parse(data []byte) (*Scenario, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return &s, nil
}

// Validate checks a generic YAML or JSON document against the scenario
// schema.
func Validate(doc any) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("failed to compile scenario schema: %w", err)
	}
	// round-trip through JSON so the validator sees JSON types only
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return nil
}
