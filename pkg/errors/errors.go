package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents a page that failed to load in time
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeSearchSurface represents a missing input, dropdown or search button
	ErrorTypeSearchSurface ErrorType = "search_surface"
	// ErrorTypeVesselNotFound represents a completed search without the target vessel
	ErrorTypeVesselNotFound ErrorType = "vessel_not_found"
	// ErrorTypeExtractionAmbiguous represents a located vessel with uncertain column mapping
	ErrorTypeExtractionAmbiguous ErrorType = "extraction_ambiguous"
	// ErrorTypeDateParse represents a date string that matched no known pattern
	ErrorTypeDateParse ErrorType = "date_parse"
	// ErrorTypeFetch represents network-level failures for API/XML terminals
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeTimeout represents an exceeded per-terminal deadline
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeLaunch represents a browser that could not be started
	ErrorTypeLaunch ErrorType = "launch"
	// ErrorTypeCooldown represents a terminal blocked after recent failures
	ErrorTypeCooldown ErrorType = "cooldown"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeInternal represents anything unexpected, including recovered panics
	ErrorTypeInternal ErrorType = "internal"
)

// ScrapeError represents a terminal-specific error
type ScrapeError struct {
	Type     ErrorType
	Terminal string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Terminal, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Terminal, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	return RetryableType(e.Type)
}

// RetryableType reports whether failures of type t are transient site trouble
// worth another attempt and a cooldown.
func RetryableType(t ErrorType) bool {
	switch t {
	case ErrorTypeNavigation, ErrorTypeFetch, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, terminal, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:     errType,
		Terminal: terminal,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(terminal, message string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, terminal, message, err)
}

// NewSearchSurface creates a new search-surface-not-found error
func NewSearchSurface(terminal, message string) *ScrapeError {
	return New(ErrorTypeSearchSurface, terminal, message, nil)
}

// NewFetch creates a new fetch/transport error
func NewFetch(terminal, message string, err error) *ScrapeError {
	return New(ErrorTypeFetch, terminal, message, err)
}

// NewTimeout creates a new timeout error
func NewTimeout(terminal string, after time.Duration) *ScrapeError {
	return New(ErrorTypeTimeout, terminal, fmt.Sprintf("timed out after %v", after), nil)
}

// NewLaunch creates a new browser launch error
func NewLaunch(terminal string, err error) *ScrapeError {
	return New(ErrorTypeLaunch, terminal, "failed to launch browser", err)
}

// NewCooldown creates a new cooldown error
func NewCooldown(terminal string, remaining string) *ScrapeError {
	return New(ErrorTypeCooldown, terminal, "terminal is cooling down after recent failures ("+remaining+")", nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewInternal creates an error for unexpected faults
func NewInternal(terminal, message string, err error) *ScrapeError {
	return New(ErrorTypeInternal, terminal, message, err)
}

// TypeOf returns the ErrorType carried anywhere in err's chain, or ErrorTypeInternal.
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type
	}
	return ErrorTypeInternal
}

// Retryable reports whether err carries a retryable ScrapeError.
func Retryable(err error) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.IsRetryable()
	}
	return false
}
