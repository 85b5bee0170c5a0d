package repository

import (
	"context"
	"errors"

	"parking_ledger/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	// FindAll returns lots in the order they were created.
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
	UpdateAvailable(ctx context.Context, id int, available int) error
}

type CarProfileRepository interface {
	// Save creates or overwrites the profile for a car number. An overwrite keeps the
	// position of the first insertion.
	Save(ctx context.Context, profile *domain.CarProfile) error
	FindByCarNumber(ctx context.Context, carNumber string) (*domain.CarProfile, error)
	FindAll(ctx context.Context) ([]domain.CarProfile, error)
}

type ParkingSessionRepository interface {
	// Save creates or replaces the session kept for session.CarNumber.
	Save(ctx context.Context, session *domain.ParkingSession) error
	FindByCarNumber(ctx context.Context, carNumber string) (*domain.ParkingSession, error)
	FindOpenByLot(ctx context.Context, lotID int) ([]domain.ParkingSession, error)
}
