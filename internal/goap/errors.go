package goap

import "errors"

var (
	// ErrTooManyKeys is returned when a schema would need more bits than a
	// Mask provides.
	ErrTooManyKeys = errors.New("goap: too many keys")
	// ErrInvalidKey is returned for empty or duplicate key names.
	ErrInvalidKey = errors.New("goap: invalid key")
	// ErrUnknownKey is returned when a key is not enumerated by the schema.
	ErrUnknownKey = errors.New("goap: unknown key")
	// ErrUnknownAction is returned when an action name was never registered.
	ErrUnknownAction = errors.New("goap: unknown action")
	// ErrInvalidCost is returned for action costs outside (0, 1].
	ErrInvalidCost = errors.New("goap: action cost must be in (0, 1]")
	// ErrInvalidAction is returned for malformed action registrations.
	ErrInvalidAction = errors.New("goap: invalid action")
)
