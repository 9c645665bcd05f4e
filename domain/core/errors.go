package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrCaptureNotFound  = fmt.Errorf("%w: capture", ErrNotFound)
	ErrEvidenceNotFound = fmt.Errorf("%w: evidence package", ErrNotFound)
	ErrCheckpointNotFound = fmt.Errorf("%w: checkpoint", ErrNotFound)

	// Detector input errors
	ErrNoDetectorInput  = errors.New("no usable detector input")
	ErrInvalidScore     = errors.New("detector score outside [0,1]")
	ErrDetectorTimeout  = errors.New("detector timed out")

	// Chain integrity errors
	ErrHashMismatch   = errors.New("hash mismatch")
	ErrChainBroken    = errors.New("hash chain broken")
	ErrSegmentMissing = errors.New("segment missing from source")
	ErrSaltMissing    = errors.New("capture salt missing")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewChainBreakError(segment int, expected, actual Hash) error {
	return fmt.Errorf("%w at segment %d: expected %s, computed %s", ErrChainBroken, segment, expected, actual)
}

func NewInvalidScoreError(method string, value float64) error {
	return fmt.Errorf("%w: %s reported %v", ErrInvalidScore, method, value)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsChainIntegrityError(err error) bool {
	return errors.Is(err, ErrChainBroken) || errors.Is(err, ErrHashMismatch)
}
