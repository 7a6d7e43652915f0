package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input-contract violations: fatal, never retried
	ErrIndexMismatch   = errors.New("features and labels do not have matching indices")
	ErrLengthMismatch  = errors.New("sequences have different lengths")
	ErrCSMFSum         = errors.New("CSMFs must sum to 1")
	ErrInvalidSubset   = errors.New("invalid split subset")
	ErrInvalidSplit    = errors.New("invalid split configuration")
	ErrUnknownCause    = errors.New("cause not present in sample")
	ErrResampleSize    = errors.New("resampled data has the wrong size")
	ErrEmptyDataset    = errors.New("dataset is empty")
	ErrInvalidArgument = errors.New("invalid argument")

	// Statistical errors
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Classifier errors
	ErrUnknownClassifier = errors.New("unknown classifier")
	ErrNotFitted         = errors.New("classifier is not fitted")

	// Lookup errors
	ErrNotFound = errors.New("resource not found")
)

// Error constructors with context
func NewIndexMismatchError(onlyFeatures, onlyLabels int) error {
	return fmt.Errorf("%w: %d ids only in features, %d ids only in labels", ErrIndexMismatch, onlyFeatures, onlyLabels)
}

func NewLengthMismatchError(what string, a, b int) error {
	return fmt.Errorf("%w: %s has %d and %d elements", ErrLengthMismatch, what, a, b)
}

func NewCSMFSumError(actual, predicted float64) error {
	return fmt.Errorf("%w: actual sums to %.6f, predicted sums to %.6f", ErrCSMFSum, actual, predicted)
}

func NewSubsetError(start, stop int) error {
	return fmt.Errorf("%w: [%d, %d]", ErrInvalidSubset, start, stop)
}

func NewSplitError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSplit, reason)
}

func NewUnknownCauseError(cause string) error {
	return fmt.Errorf("%w: %q", ErrUnknownCause, cause)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// IsInputContractError reports whether err signals an upstream programming or
// data error that must not be retried.
func IsInputContractError(err error) bool {
	return errors.Is(err, ErrIndexMismatch) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrCSMFSum) ||
		errors.Is(err, ErrInvalidSubset) ||
		errors.Is(err, ErrInvalidSplit) ||
		errors.Is(err, ErrUnknownCause) ||
		errors.Is(err, ErrEmptyDataset)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
