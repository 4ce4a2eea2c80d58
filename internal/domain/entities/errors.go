package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of the bot. Typed errors below
// match these through errors.Is.
var (
	ErrConfig     = errors.New("config error")
	ErrEmptyInput = errors.New("empty input")
	ErrTraining   = errors.New("training error")
	ErrInference  = errors.New("inference error")
)

// ConfigError reports a corpus that is missing, unparseable or schema-invalid.
type ConfigError struct {
	Source string
	Reason string
	Err    error
}

// NewConfigError builds a ConfigError. err may be nil.
func NewConfigError(source, reason string, err error) *ConfigError {
	return &ConfigError{Source: source, Reason: reason, Err: err}
}

// NewConfigErrorf builds a ConfigError with a formatted reason.
func NewConfigErrorf(source, format string, args ...any) *ConfigError {
	return &ConfigError{Source: source, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("config error")
	if e.Source != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Source)
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// TrainingError reports training data with inconsistent shapes.
type TrainingError struct {
	Reason string
}

func (e *TrainingError) Error() string { return "training error: " + e.Reason }

func (e *TrainingError) Is(target error) bool { return target == ErrTraining }

// InferenceError reports a feature vector whose shape does not match the model.
// It signals a bug between extractor and classifier, never bad user input.
type InferenceError struct {
	Want int
	Got  int
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference error: feature vector has %d dimensions, model expects %d", e.Got, e.Want)
}

func (e *InferenceError) Is(target error) bool { return target == ErrInference }
