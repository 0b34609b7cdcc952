package collections

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a RowAccumulator is built with a fill
	// policy but without an explicit key set.
	ErrConfiguration = errors.New("invalid accumulator configuration")
	ErrKeyMismatch   = errors.New("row keys do not match expected keys")
	ErrMissingKey    = errors.New("missing key with no fill value")
)

type KeyMismatchError struct {
	Expected []any
	Received []any
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("keys mismatch: expected %v, received %v", e.Expected, e.Received)
}

func (e *KeyMismatchError) Unwrap() error {
	return ErrKeyMismatch
}

type MissingKeyError struct {
	Key any
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("key %v is missing and has no fill value", e.Key)
}

func (e *MissingKeyError) Unwrap() error {
	return ErrMissingKey
}
