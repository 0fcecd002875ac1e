// Package apperr provides custom error types for domain-specific errors.
package apperr

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrTokenMissing means no broker credential is stored for the account.
	ErrTokenMissing = errors.New("broker token missing")
	// ErrTokenExpired means the stored broker credential is no longer valid.
	ErrTokenExpired = errors.New("broker token expired")
	// ErrDuplicateTrades is a recognized success variant, not a failure:
	// every trade in the batch already existed under the same id.
	ErrDuplicateTrades = errors.New("DUPLICATE_TRADES")
	// ErrAccountRequired means a sync was requested without an account id.
	ErrAccountRequired = errors.New("accountId is required")
	// ErrCheckpointNotFound means no sync checkpoint exists for the account.
	ErrCheckpointNotFound = errors.New("sync checkpoint not found")
)

// IsAuthError reports whether err is a credential problem. Auth errors
// are fatal to the current sync cycle and leave the checkpoint untouched.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrTokenMissing) || errors.Is(err, ErrTokenExpired)
}

// UpstreamError represents a non-success response from the broker API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("broker API error %d: %s", e.Status, e.Body)
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(status int, body string) *UpstreamError {
	return &UpstreamError{Status: status, Body: body}
}

// ValidationError represents a rejected input. Validation failures are
// reported immediately and cause no side effects.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// AnalyticsError represents a failed indicator computation for one
// trade. Recovered locally, logged, never propagated: it must not roll
// back the trade or block checkpoint advancement.
type AnalyticsError struct {
	TradeID string
	Err     error
}

func (e *AnalyticsError) Error() string {
	return fmt.Sprintf("analytics error [trade %s]: %v", e.TradeID, e.Err)
}

func (e *AnalyticsError) Unwrap() error {
	return e.Err
}

// NewAnalyticsError creates a new AnalyticsError.
func NewAnalyticsError(tradeID string, err error) *AnalyticsError {
	return &AnalyticsError{TradeID: tradeID, Err: err}
}

// SyncError wraps a hard failure of one account's sync cycle with the
// account identifier for diagnosis.
type SyncError struct {
	AccountID string
	Stage     string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync error [%s] %s: %v", e.AccountID, e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError creates a new SyncError.
func NewSyncError(accountID, stage string, err error) *SyncError {
	return &SyncError{AccountID: accountID, Stage: stage, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
