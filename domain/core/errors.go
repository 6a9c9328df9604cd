package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrRunNotFound     = fmt.Errorf("%w: run", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// Contract violations
	ErrInvalidArm = errors.New("invalid arm")

	// Reward sequence errors
	ErrEmptySequence = errors.New("reward sequence is empty")
	ErrMalformedRow  = errors.New("malformed reward row")
)

// NewInvalidArmError reports an arm index outside {0, 1}
func NewInvalidArmError(arm int) error {
	return fmt.Errorf("%w: %d (want 0 or 1)", ErrInvalidArm, arm)
}

// NewMalformedRowError reports a reward row that could not be parsed
func NewMalformedRowError(row int, reason string) error {
	return fmt.Errorf("%w at row %d: %s", ErrMalformedRow, row, reason)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidArmError(err error) bool {
	return errors.Is(err, ErrInvalidArm)
}
