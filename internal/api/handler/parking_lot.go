package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking_ledger/internal/service"
)

type ParkingLotHandler struct {
	ledger *service.Ledger
}

func NewParkingLotHandler(l *service.Ledger) *ParkingLotHandler {
	return &ParkingLotHandler{ledger: l}
}

// GET /status?format=text|table|json
func (h *ParkingLotHandler) GetParkingStatus(c *gin.Context) {
	lots, err := h.ledger.Lots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read parking status", "details": err.Error()})
		return
	}

	switch c.DefaultQuery("format", "text") {
	case "json":
		c.JSON(http.StatusOK, lots)
	case "table":
		c.String(http.StatusOK, service.FormatStatusTable(lots))
	case "text":
		c.String(http.StatusOK, service.FormatParkingStatus(lots))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of text, table, json"})
	}
}

// GET /lots/:id
func (h *ParkingLotHandler) GetParkingLotByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidLotID})
		return
	}

	lot, err := h.ledger.Lot(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": service.FailureMessage(err)})
		return
	}
	c.JSON(http.StatusOK, lot)
}

// GET /lots/:id/active-sessions
func (h *ParkingLotHandler) GetActiveSessionsByLotID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidLotID})
		return
	}

	sessions, err := h.ledger.OpenSessions(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": service.FailureMessage(err)})
		return
	}
	c.JSON(http.StatusOK, sessions)
}
