package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLot       = errors.New("invalid parking lot")
	ErrNoSlotsAvailable = errors.New("no available slots in this parking lot")
	ErrAlreadyParked    = errors.New("car already has an open parking session")
	ErrSessionNotFound  = errors.New("car not found or already exited")
)

// FailureMessage returns the text shown to an operator for a failed ledger call.
func FailureMessage(err error) string {
	var parked *AlreadyParkedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parked):
		return fmt.Sprintf("Car %s is already parked in lot %d.", parked.CarNumber, parked.LotID)
	case errors.Is(err, ErrInvalidLot):
		return "Invalid parking lot ID."
	case errors.Is(err, ErrNoSlotsAvailable):
		return "No available slots in this parking lot."
	case errors.Is(err, ErrSessionNotFound):
		return "Car not found or already exited."
	default:
		return "Unexpected error: " + err.Error()
	}
}

// AlreadyParkedError carries the lot holding the car's open session.
type AlreadyParkedError struct {
	CarNumber string
	LotID     int
}

func (e *AlreadyParkedError) Error() string {
	return fmt.Sprintf("car %s is parked in lot %d: %v", e.CarNumber, e.LotID, ErrAlreadyParked)
}

func (e *AlreadyParkedError) Unwrap() error {
	return ErrAlreadyParked
}

// rejectionReason is the metric label for a refused request.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLot):
		return "invalid_lot"
	case errors.Is(err, ErrNoSlotsAvailable):
		return "no_slots"
	case errors.Is(err, ErrAlreadyParked):
		return "already_parked"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	default:
		return "internal"
	}
}
