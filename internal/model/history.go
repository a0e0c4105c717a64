package model

import "github.com/shopspring/decimal"

// FeeStatus classifies a fee calculation result.
type FeeStatus string

const (
	StatusNoAppointment     FeeStatus = "no_appointment"
	StatusError             FeeStatus = "error"
	StatusWithinGracePeriod FeeStatus = "within_grace_period"
	StatusMildlyOverdue     FeeStatus = "mildly_overdue"
	StatusOverdue           FeeStatus = "overdue"
	StatusSeverelyOverdue   FeeStatus = "severely_overdue"
)

// Overdue reports whether the status lies in one of the overdue tiers.
func (s FeeStatus) Overdue() bool {
	switch s {
	case StatusMildlyOverdue, StatusOverdue, StatusSeverelyOverdue:
		return true
	}
	return false
}

// FeeResult is a fully populated fee calculation. Once frozen into a closed
// history entry it never changes.
type FeeResult struct {
	Status        FeeStatus       `json:"status"`
	OverdueDays   int             `json:"overdue_days"`
	BaseFee       decimal.Decimal `json:"base_fee"`
	DailyFeeTotal decimal.Decimal `json:"daily_fee_total"`
	TotalFee      decimal.Decimal `json:"total_fee"`
	ExtrasTotal   decimal.Decimal `json:"extras_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// HistoryEntry is one stay in the append-only ledger. ID mirrors the id of
// the vehicle record that opened it. ZoneIn and ZoneOut are 1-based for
// external display; OutTime and ZoneOut stay empty while the entry is open,
// and Fee is nil until the entry is closed.
type HistoryEntry struct {
	ID          string     `json:"id"`
	VIN         string     `json:"vin"`
	StorageCode string     `json:"storage_code"`
	ZoneIn      int        `json:"zone"`
	InTime      string     `json:"in_time"`
	ZoneOut     int        `json:"zone_out,omitempty"`
	OutTime     string     `json:"out_time"`
	ReadyDate   string     `json:"ready_date,omitempty"`
	ReadyTime   string     `json:"ready_time,omitempty"`
	Fee         *FeeResult `json:"fee,omitempty"`
}

// Open reports whether the stay has not been checked out yet.
func (h *HistoryEntry) Open() bool {
	return h.OutTime == ""
}
