package domain

import (
	"errors"
	"strconv"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// TransportError is a non-success status or an unreachable upstream.
type TransportError struct {
	Op     string // Request path or operation
	Status int    // HTTP status, 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return e.Op + ": unexpected status code: " + strconv.Itoa(e.Status)
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) IsRetriable() bool {
	return true
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is a malformed response body.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return e.Op + ": malformed response: " + e.Err.Error()
}

func (e *ParseError) IsRetriable() bool {
	return true
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError is a response or parameter missing a required field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return "validation error [" + e.Field + "]: " + e.Err.Error()
}

// A retry can succeed once upstream has data for the window.
func (e *ValidationError) IsRetriable() bool {
	return true
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// APIError is the single user-facing error shape. Message is what the
// views print; the typed cause stays reachable through errors.As.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NormalizeError wraps err into an *APIError unless it already is one.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return &APIError{Message: "API request failed: " + err.Error(), Err: err}
}

// ErrorMessage returns the user-facing text of err, "" for nil.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var (
	// ErrUnknownEndpoint is returned for a query kind the dispatcher does not know.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrNoChartData is returned when market_chart carries no prices.
	ErrNoChartData = errors.New("no chart data available")

	// ErrMissingParam is returned when a descriptor lacks a required parameter.
	ErrMissingParam = errors.New("missing parameter")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
