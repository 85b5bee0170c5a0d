package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosuri/uitable"

	"parking_ledger/internal/domain"
)

// ctimeLayout matches the classic ctime(3) rendering, e.g. "Sun Oct  5 14:03:09 2025".
const ctimeLayout = time.ANSIC

// CarRecord pairs a car profile with the session stored under the same car number.
type CarRecord struct {
	Profile domain.CarProfile      `json:"profile"`
	Session *domain.ParkingSession `json:"session,omitempty"`
}

// FormatParkingStatus renders one line per lot, in the given order.
func FormatParkingStatus(lots []domain.ParkingLot) string {
	var b strings.Builder
	for _, lot := range lots {
		fmt.Fprintf(&b, "Lot %d: %d / %d Available at %s\n", lot.ID, lot.Available, lot.Capacity, lot.Location)
	}
	return b.String()
}

// FormatStatusTable renders the lots as an aligned table for terminals.
func FormatStatusTable(lots []domain.ParkingLot) string {
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("LOT", "AVAILABLE", "CAPACITY", "LOCATION")
	for _, lot := range lots {
		table.AddRow(lot.ID, lot.Available, lot.Capacity, lot.Location)
	}
	return table.String() + "\n"
}

// FormatCarInfo renders a block per car. Exit time and fee only appear once the car has
// left. Times are shown in loc.
func FormatCarInfo(records []CarRecord, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "Car Number: %s\n", r.Profile.CarNumber)
		fmt.Fprintf(&b, "Owner Name: %s\n", r.Profile.OwnerName)
		fmt.Fprintf(&b, "Car Model: %s\n", r.Profile.CarModel)
		fmt.Fprintf(&b, "Phone Number: %s\n", r.Profile.PhoneNumber)
		if s := r.Session; s != nil {
			fmt.Fprintf(&b, "Parking Lot ID: %d\n", s.LotID)
			fmt.Fprintf(&b, "Entry Time: %s\n", s.EntryTime.In(loc).Format(ctimeLayout))
			if s.ExitTime.Valid {
				fmt.Fprintf(&b, "Exit Time: %s\n", s.ExitTime.Time.In(loc).Format(ctimeLayout))
				fmt.Fprintf(&b, "Fee: $%s\n", s.Fee.StringFixed(2))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
