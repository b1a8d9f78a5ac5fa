package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers test with errors.Is.
var (
	ErrMissingData      = errors.New("missing data")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDegenerateInput  = errors.New("degenerate input")
	ErrConfiguration    = errors.New("configuration error")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// InvalidParameterError rejects a caller-supplied value
type InvalidParameterError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// ConfigurationError reports an inconsistent model configuration
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
