package store

import (
	"time"

	"vehicle-storage-backend/internal/model"
)

// FeeFunc computes the fee snapshot frozen into a history entry at check-out,
// and the advisory fee preview for parked vehicles.
type FeeFunc func(readyDate string, extras []model.Extra, now time.Time) model.FeeResult

// ExtrasFunc derives ad hoc charges from the notes text at check-in time.
type ExtrasFunc func(notes string, now time.Time) []model.Extra

// Persister writes whole-state snapshots. Both structures are serialized in
// full after every successful mutation; there is no incremental persistence.
type Persister interface {
	SaveOccupancy(zones map[string][]*model.Vehicle) error
	SaveHistory(entries []*model.HistoryEntry) error
}

// TimeField selects which ledger timestamp a range query filters on.
type TimeField string

const (
	FieldCheckIn  TimeField = "in_time"
	FieldCheckOut TimeField = "out_time"
)

// AddRequest carries the raw input of a check-in. Identifiers are validated
// by the store before anything is mutated.
type AddRequest struct {
	Zone        int
	VIN         string
	StorageCode string
	ReadyDate   string
	ReadyTime   string
	Notes       string
}

// ZoneSummary is a read-only view of one zone for the overview endpoint.
type ZoneSummary struct {
	Zone     int             `json:"zone"`
	Vehicles []model.Vehicle `json:"vehicles"`
}
