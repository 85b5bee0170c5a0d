package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

type ParkingSessionStatus string

const (
	SessionOpen   ParkingSessionStatus = "open"
	SessionClosed ParkingSessionStatus = "closed"
)

type ParkingSession struct {
	ID        string               `json:"id"`
	CarNumber string               `json:"car_number"`
	LotID     int                  `json:"lot_id"`
	EntryTime time.Time            `json:"entry_time"`
	ExitTime  null.Time            `json:"exit_time"`
	Fee       decimal.Decimal      `json:"fee"`
	Status    ParkingSessionStatus `json:"status"`
}

// IsOpen reports whether the car is still inside the lot.
func (s ParkingSession) IsOpen() bool {
	return s.Status == SessionOpen && !s.ExitTime.Valid
}

// VehicleEntryDTO mirrors the entry form. Every field arrives as text; the lot id is
// parsed by the caller before the ledger is invoked.
type VehicleEntryDTO struct {
	CarNumber   string `json:"car_number" form:"car_number" binding:"required"`
	OwnerName   string `json:"owner_name" form:"owner_name" binding:"required"`
	CarModel    string `json:"car_model" form:"car_model" binding:"required"`
	PhoneNumber string `json:"phone_number" form:"phone_number" binding:"required"`
	LotID       string `json:"lot_id" form:"lot_id" binding:"required"`
}

type VehicleExitDTO struct {
	CarNumber string `json:"car_number" form:"car_number" binding:"required"`
}
