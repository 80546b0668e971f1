package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrInvalidCycleConfiguration = errors.New("custom billing cycle requires a positive customCycleDays")
	ErrInvalidAmount             = errors.New("subscription amount must be positive")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeSubscriptionNotFound      = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeInvalidCycleConfiguration = "INVALID_CYCLE_CONFIGURATION"
	ErrCodeInvalidAmount             = "INVALID_AMOUNT"
	ErrCodeValidationError           = "VALIDATION_ERROR"
	ErrCodeDatabaseError             = "DATABASE_ERROR"
	ErrCodeCacheError                = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapSubscriptionNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeSubscriptionNotFound,
		fmt.Sprintf("Subscription with ID %s not found", id),
		ErrSubscriptionNotFound,
	)
}

func WrapInvalidCycleConfiguration(customCycleDays int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCycleConfiguration,
		fmt.Sprintf("Custom billing cycle requires a positive day count, got %d", customCycleDays),
		ErrInvalidCycleConfiguration,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid subscription amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
