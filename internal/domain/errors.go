package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidActor         = errors.New("invalid actor: user not found")
	ErrAlreadyReconciled    = errors.New("shift already has a cash register")
	ErrDuplicateActiveAlert = errors.New("an active alert already exists for this condition")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidAlert         = errors.New("invalid alert")
)

// InsufficientStockError is returned when a sale would drive a tank below zero.
type InsufficientStockError struct {
	TankID    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in tank %s: requested %s, available %s",
		e.TankID, e.Requested.String(), e.Available.String())
}

// CapacityExceededError is returned when a delivery would overfill a tank.
type CapacityExceededError struct {
	TankID   string
	Current  decimal.Decimal
	Delta    decimal.Decimal
	Capacity decimal.Decimal
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded for tank %s: current %s + %s > capacity %s",
		e.TankID, e.Current.String(), e.Delta.String(), e.Capacity.String())
}

// InvalidLevelError is returned when an absolute level falls outside [0, capacity].
type InvalidLevelError struct {
	TankID   string
	Level    decimal.Decimal
	Capacity decimal.Decimal
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid level %s for tank %s: must be between 0 and %s",
		e.Level.String(), e.TankID, e.Capacity.String())
}

// InvalidThresholdError is returned when a low-stock threshold is not in
// [0, capacity).
type InvalidThresholdError struct {
	TankID    string
	Threshold decimal.Decimal
	Capacity  decimal.Decimal
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid low threshold %s for tank %s: must be at least 0 and below capacity %s",
		e.Threshold.String(), e.TankID, e.Capacity.String())
}

// VersionConflictError signals that the row changed since it was read.
// Callers should re-read and retry.
type VersionConflictError struct {
	TankID          string
	ExpectedVersion int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on tank %s: expected version %d is stale", e.TankID, e.ExpectedVersion)
}

// InvalidStateError is returned when an entity is not in a state that allows
// the requested transition.
type InvalidStateError struct {
	Entity  string
	ID      string
	State   string
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s: %s", e.Entity, e.ID, e.State, e.Message)
}

// UnknownPaymentMethodError is returned when a declared amount references a
// payment method that does not exist.
type UnknownPaymentMethodError struct {
	PaymentMethodID string
}

func (e *UnknownPaymentMethodError) Error() string {
	return fmt.Sprintf("unknown payment method: %s", e.PaymentMethodID)
}

// IsValidation reports whether err is a caller-correctable invariant failure.
func IsValidation(err error) bool {
	var (
		insufficient *InsufficientStockError
		capacity     *CapacityExceededError
		level        *InvalidLevelError
		threshold    *InvalidThresholdError
		state        *InvalidStateError
		method       *UnknownPaymentMethodError
	)
	return errors.As(err, &insufficient) ||
		errors.As(err, &capacity) ||
		errors.As(err, &level) ||
		errors.As(err, &threshold) ||
		errors.As(err, &state) ||
		errors.As(err, &method) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidAlert)
}

// IsConflict reports whether err is a concurrency failure the caller may
// retry or treat as already done.
func IsConflict(err error) bool {
	var version *VersionConflictError
	return errors.As(err, &version) ||
		errors.Is(err, ErrAlreadyReconciled) ||
		errors.Is(err, ErrDuplicateActiveAlert)
}

// IsNotFound reports whether err refers to a missing record or actor.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidActor)
}
