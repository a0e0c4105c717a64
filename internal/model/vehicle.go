package model

import "github.com/shopspring/decimal"

// TimeLayout is the minute-resolution timestamp format used everywhere a
// check-in or check-out time is stored or compared.
const TimeLayout = "2006-01-02 15:04"

// DateLayout is the format of readiness dates and extras dates.
const DateLayout = "2006-01-02"

// Extra is an ad hoc charge captured from the notes text at check-in time.
// It is derived exactly once and never recomputed.
type Extra struct {
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	Date        string          `json:"date"`
}

// Vehicle represents a currently parked vehicle. It is owned exclusively by
// the occupancy store while parked; Zone is maintained by the store and is
// implied by the zone table in the persisted form.
type Vehicle struct {
	ID          string  `json:"id"`
	VIN         string  `json:"vin"`
	StorageCode string  `json:"storage_code"`
	Zone        int     `json:"-"`
	InTime      string  `json:"in_time"`
	ReadyDate   string  `json:"ready_date,omitempty"`
	ReadyTime   string  `json:"ready_time,omitempty"`
	Notes       string  `json:"notes"`
	Extras      []Extra `json:"extras,omitempty"`
}
