package preset

import (
	"errors"
	"fmt"
)

// Validation failures. Wrapped in *Error when they concern a single preset.
var (
	ErrNoChannels    = errors.New("channel count must be at least 1")
	ErrEmptyTable    = errors.New("preset table is empty")
	ErrArityMismatch = errors.New("preset level count does not match channel count")
	ErrLevelRange    = errors.New("preset level out of range 0..255")
)

// Error reports a problem with one preset of the table.
type Error struct {
	Index int
	Name  string
	Cause error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("preset %d (%s): %v", e.Index, e.Name, e.Cause)
	}
	return fmt.Sprintf("preset %d: %v", e.Index, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
