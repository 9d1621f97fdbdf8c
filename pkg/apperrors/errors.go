// Package apperrors defines the error taxonomy shared by the valuation pipeline.
//
// Callers at a boundary (HTTP handler, CLI) usually only need KindOf or
// IsCallerFixable; the typed errors keep their cause reachable through
// errors.As / errors.Is.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a closed set of error categories.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDataLoad
	KindModelLoad
	KindPrediction
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindDataLoad:
		return "DATA_LOAD_ERROR"
	case KindModelLoad:
		return "MODEL_LOAD_ERROR"
	case KindPrediction:
		return "PREDICTION_ERROR"
	case KindConfig:
		return "CONFIG_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// ValidationError reports every violated input constraint at once.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: append([]string(nil), problems...)}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// DataLoadError covers a missing or corrupt raw data file or auxiliary artifact.
type DataLoadError struct {
	Path string
	Err  error
}

func NewDataLoadError(path string, err error) *DataLoadError {
	return &DataLoadError{Path: path, Err: err}
}

func (e *DataLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("data could not be loaded: %v", e.Err)
	}
	return fmt.Sprintf("data could not be loaded (%s): %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// ModelLoadError covers a missing or corrupt serialized model.
type ModelLoadError struct {
	Path string
	Err  error
}

func NewModelLoadError(path string, err error) *ModelLoadError {
	return &ModelLoadError{Path: path, Err: err}
}

func (e *ModelLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("model could not be loaded: %v", e.Err)
	}
	return fmt.Sprintf("model could not be loaded (%s): %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// PredictionError wraps any failure inside the predict sequence.
type PredictionError struct {
	Err error
}

func NewPredictionError(err error) *PredictionError {
	return &PredictionError{Err: err}
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// ConfigError reports an unusable configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// KindOf returns the most specific kind found in the error chain. A
// PredictionError wrapping a ValidationError reports KindValidation.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}
	var modelErr *ModelLoadError
	if errors.As(err, &modelErr) {
		return KindModelLoad
	}
	var dataErr *DataLoadError
	if errors.As(err, &dataErr) {
		return KindDataLoad
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return KindConfig
	}
	var predictionErr *PredictionError
	if errors.As(err, &predictionErr) {
		return KindPrediction
	}
	return KindUnknown
}

// IsCallerFixable reports whether the caller can recover by correcting input.
func IsCallerFixable(err error) bool {
	return KindOf(err) == KindValidation
}

// Problems returns the individual validation messages in the chain, if any.
func Problems(err error) []string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return append([]string(nil), validationErr.Problems...)
	}
	return nil
}
