package domain

import "time"

type StatusEventType string

const (
	StatusEventSnapshot StatusEventType = "lot_status"
)

// LotStatusNotification is pushed to websocket clients after every entry or exit.
type LotStatusNotification struct {
	EventType StatusEventType `json:"event_type"`
	Lots      []ParkingLot    `json:"lots"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}
