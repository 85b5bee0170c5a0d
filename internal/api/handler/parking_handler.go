package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"parking_ledger/internal/domain"
	"parking_ledger/internal/service"
)

const (
	msgFillAllFields  = "Please fill all fields."
	msgInvalidLotID   = "Parking lot ID must be a number."
	msgInvalidCarExit = "Enter a valid Car Number."
)

type ParkingSessionHandler struct {
	ledger *service.Ledger
}

func NewParkingSessionHandler(l *service.Ledger) *ParkingSessionHandler {
	return &ParkingSessionHandler{ledger: l}
}

// POST /entries
func (h *ParkingSessionHandler) RegisterEntry(c *gin.Context) {
	var dto domain.VehicleEntryDTO
	if err := c.ShouldBind(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgFillAllFields, "details": err.Error()})
		return
	}

	lotID, err := strconv.Atoi(strings.TrimSpace(dto.LotID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidLotID})
		return
	}

	receipt, err := h.ledger.RegisterEntry(c.Request.Context(), service.EntryInput{
		CarNumber:   dto.CarNumber,
		OwnerName:   dto.OwnerName,
		CarModel:    dto.CarModel,
		PhoneNumber: dto.PhoneNumber,
		LotID:       lotID,
	})
	if err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": service.FailureMessage(err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": receipt.Message(),
		"session": receipt.Session,
		"lot":     receipt.Lot,
	})
}

// POST /exits
func (h *ParkingSessionHandler) RegisterExit(c *gin.Context) {
	var dto domain.VehicleExitDTO
	if err := c.ShouldBind(&dto); err != nil || strings.TrimSpace(dto.CarNumber) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidCarExit})
		return
	}

	receipt, err := h.ledger.RegisterExit(c.Request.Context(), dto.CarNumber)
	if err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": service.FailureMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          receipt.Message(),
		"fee":              receipt.Session.Fee.StringFixed(2),
		"duration_seconds": int64(receipt.Duration.Seconds()),
		"session":          receipt.Session,
		"lot":              receipt.Lot,
	})
}

// GET /sessions/:car_number
func (h *ParkingSessionHandler) GetSession(c *gin.Context) {
	session, err := h.ledger.Session(c.Request.Context(), c.Param("car_number"))
	if err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": service.FailureMessage(err)})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /cars
func (h *ParkingSessionHandler) GetAllCarInfo(c *gin.Context) {
	if c.Query("format") == "json" {
		records, err := h.ledger.CarRecords(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list cars", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	info, err := h.ledger.GetAllCarInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list cars", "details": err.Error()})
		return
	}
	c.String(http.StatusOK, info)
}

func statusForLedgerError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidLot), errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoSlotsAvailable), errors.Is(err, service.ErrAlreadyParked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
