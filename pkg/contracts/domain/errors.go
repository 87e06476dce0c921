package domain

import (
	"errors"
	"fmt"
)

// Analytics errors. Callers match them with errors.Is; producers wrap them
// with %w to add detail.
var (
	ErrInvalidRange      = errors.New("start date is after end date")
	ErrEmptyWindow       = errors.New("no records in selected window")
	ErrInvalidGoalTarget = errors.New("goal target must be positive")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrUnknownMetric     = errors.New("unknown metric")
	ErrInsufficientData  = errors.New("insufficient data")

	// ErrDataLoadFailure marks a missing or corrupt dataset. It is not
	// recoverable within a request.
	ErrDataLoadFailure = errors.New("dataset load failure")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset not found", ErrDataLoadFailure)
	ErrCorruptDataset  = fmt.Errorf("%w: dataset is corrupt", ErrDataLoadFailure)
)

// ValidationError describes a single rejected input value
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}
