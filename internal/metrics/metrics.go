package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EntriesTotal counts successful entries per lot.
	EntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_entries_total",
			Help: "Total number of registered car entries.",
		},
		[]string{"lot"},
	)

	// ExitsTotal counts successful exits per lot.
	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_exits_total",
			Help: "Total number of registered car exits.",
		},
		[]string{"lot"},
	)

	// RejectionsTotal counts entries and exits refused by the ledger.
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_rejections_total",
			Help: "Total number of refused entry or exit requests.",
		},
		[]string{"operation", "reason"}, // operation: entry/exit
	)

	FeesCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_fees_collected_total",
			Help: "Sum of fees charged on exit, in currency units.",
		},
	)

	// LotAvailable tracks free slots per lot (0 = full).
	LotAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parking_lot_available_slots",
			Help: "Currently available slots per parking lot.",
		},
		[]string{"lot"},
	)
)

func init() {
	prometheus.MustRegister(EntriesTotal)
	prometheus.MustRegister(ExitsTotal)
	prometheus.MustRegister(RejectionsTotal)
	prometheus.MustRegister(FeesCollected)
	prometheus.MustRegister(LotAvailable)
}

// LotLabel renders a lot id as a metric label value.
func LotLabel(lotID int) string {
	return strconv.Itoa(lotID)
}
