package goap

import (
	"fmt"
	"log/slog"
	"math/bits"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// MaxKeys is the largest key set a Schema can enumerate: one bit per key in a
// Mask.
const MaxKeys = 64

// Key identifies a predicate. Its value is the bit position it occupies in a
// Mask.
type Key uint8

// Bit returns the single-bit mask for k.
func (k Key) Bit() Mask { return Mask(1) << k }

// Mask is the canonical bitmask form of a set of predicates: bit k is set iff
// key k is present and true.
type Mask uint64

// Count returns the number of set bits.
func (m Mask) Count() int { return bits.OnesCount64(uint64(m)) }

// Predicates maps keys to required or observed boolean values.
type Predicates map[Key]bool

// Clone returns a copy of p.
func (p Predicates) Clone() Predicates {
	out := make(Predicates, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Converter maps a raw observed value onto the boolean predicate the planner
// reasons over.
type Converter func(value any) bool

// ExprEnv is the evaluation environment of expression converters; the raw
// value is bound as "value".
type ExprEnv struct {
	Value any `expr:"value"`
}

// Schema is the fixed, enumerable key set of a planning domain together with
// the converters used to project raw facts onto predicates.
//
// A Schema is built once and then shared read-only; SetConverter and
// SetExprConverter must complete before planning starts.
type Schema struct {
	names      []string
	byName     map[string]Key
	converters map[Key]Converter
}

// NewSchema enumerates names as keys 0..len(names)-1.
func NewSchema(names ...string) (*Schema, error) {
	if len(names) > MaxKeys {
		return nil, fmt.Errorf("%w: %d keys, at most %d", ErrTooManyKeys, len(names), MaxKeys)
	}
	s := &Schema{
		names:      make([]string, 0, len(names)),
		byName:     make(map[string]Key, len(names)),
		converters: make(map[Key]Converter),
	}
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty key name", ErrInvalidKey)
		}
		if _, ok := s.byName[name]; ok {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidKey, name)
		}
		s.byName[name] = Key(len(s.names))
		s.names = append(s.names, name)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(names ...string) *Schema {
	s, err := NewSchema(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of enumerated keys.
func (s *Schema) Len() int { return len(s.names) }

// Keys returns every enumerated key in order.
func (s *Schema) Keys() []Key {
	keys := make([]Key, len(s.names))
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// Has reports whether k is enumerated by s.
func (s *Schema) Has(k Key) bool { return int(k) < len(s.names) }

// Key resolves a key by name.
func (s *Schema) Key(name string) (Key, bool) {
	k, ok := s.byName[name]
	return k, ok
}

// Name returns the name of k, or a placeholder for keys outside the schema.
func (s *Schema) Name(k Key) string {
	if !s.Has(k) {
		return fmt.Sprintf("key#%d", k)
	}
	return s.names[k]
}

// SetConverter registers the converter for k, replacing any previous one.
func (s *Schema) SetConverter(k Key, c Converter) error {
	if !s.Has(k) {
		return fmt.Errorf("%w: %d", ErrUnknownKey, k)
	}
	if c == nil {
		delete(s.converters, k)
		return nil
	}
	s.converters[k] = c
	return nil
}

// SetExprConverter compiles src, an expr-lang boolean expression over
// "value", and registers it as the converter for k. Evaluation errors count
// as false.
func (s *Schema) SetExprConverter(k Key, src string) error {
	if !s.Has(k) {
		return fmt.Errorf("%w: %d", ErrUnknownKey, k)
	}
	program, err := compileConverter(src)
	if err != nil {
		return fmt.Errorf("converter for %q: %w", s.Name(k), err)
	}
	name := s.Name(k)
	s.converters[k] = func(value any) bool {
		result, err := expr.Run(program, ExprEnv{Value: value})
		if err != nil {
			slog.Debug("[GOAP] converter evaluation failed",
				"key", name,
				"expression", src,
				"value", fmt.Sprintf("%v", value),
				"error", err)
			return false
		}
		b, _ := result.(bool)
		return b
	}
	return nil
}

func compileConverter(src string) (*vm.Program, error) {
	return expr.Compile(src,
		expr.Env(ExprEnv{}),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
}

// Project converts raw facts into predicates: booleans pass through,
// values with a registered converter are converted, anything else is false.
// Keys outside the schema are dropped.
func (s *Schema) Project(facts map[Key]any) Predicates {
	out := make(Predicates, len(facts))
	for k, v := range facts {
		if !s.Has(k) {
			continue
		}
		out[k] = s.convert(k, v)
	}
	return out
}

func (s *Schema) convert(k Key, v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if c, ok := s.converters[k]; ok {
		return c(v)
	}
	return false
}

// Mask folds p into its canonical bitmask. Keys outside the schema are
// ignored, so predicate maps that agree on every enumerated key share a mask.
func (s *Schema) Mask(p Predicates) Mask {
	var m Mask
	for i := range s.names {
		if p[Key(i)] {
			m |= Key(i).Bit()
		}
	}
	return m
}

// Predicates builds a predicate map from named values.
func (s *Schema) Predicates(named map[string]bool) (Predicates, error) {
	out := make(Predicates, len(named))
	for name, v := range named {
		k, ok := s.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
		}
		out[k] = v
	}
	return out, nil
}

// Format renders p as a sorted, human readable list, e.g. "{HasLeg !IsWalking}".
func (s *Schema) Format(p Predicates) string {
	keys := make([]Key, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	parts := make([]string, len(keys))
	for i, k := range keys {
		if p[k] {
			parts[i] = s.Name(k)
		} else {
			parts[i] = "!" + s.Name(k)
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// FormatMask renders the keys set in m, e.g. "{HasLeg IsNearby}".
func (s *Schema) FormatMask(m Mask) string {
	var parts []string
	for i := range s.names {
		if m&Key(i).Bit() != 0 {
			parts = append(parts, s.names[i])
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}
