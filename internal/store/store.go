// Package store owns the occupancy state and the history ledger. The two
// structures form one state unit: every mutating operation runs under a
// single mutex and is followed by a whole-state snapshot write, so readers
// always observe a record either parked with an open ledger entry or gone
// with a closed one, never in between.
package store

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vehicle-storage-backend/internal/apperr"
	"vehicle-storage-backend/internal/model"
	"vehicle-storage-backend/internal/parse"
)

// Yard is the single owner of the zone-partitioned occupancy table and the
// append-only history ledger.
type Yard struct {
	mu          sync.Mutex
	areas       int
	maxCapacity int
	zones       [][]*model.Vehicle
	history     []*model.HistoryEntry
	feeFn       FeeFunc
	extrasFn    ExtrasFunc
	persister   Persister

	// now is swapped out by tests for deterministic timestamps.
	now func() time.Time
}

// New creates an empty yard with the given geometry and capacity.
func New(areas, maxCapacity int, feeFn FeeFunc, extrasFn ExtrasFunc, p Persister) *Yard {
	return &Yard{
		areas:       areas,
		maxCapacity: maxCapacity,
		zones:       make([][]*model.Vehicle, areas),
		feeFn:       feeFn,
		extrasFn:    extrasFn,
		persister:   p,
		now:         time.Now,
	}
}

// Restore replaces the in-memory state with a loaded snapshot. Zone keys
// outside [0, areas) are dropped, missing zones start empty. A snapshot that
// violates the VIN uniqueness or capacity invariants (possible after a hand
// edit) is loaded as-is with a warning; Add enforces both from then on.
func (y *Yard) Restore(occupancy map[string][]*model.Vehicle, history []*model.HistoryEntry) {
	y.mu.Lock()
	defer y.mu.Unlock()

	y.zones = make([][]*model.Vehicle, y.areas)
	seen := make(map[string]struct{})
	for key, vehicles := range occupancy {
		zone, err := strconv.Atoi(key)
		if err != nil || zone < 0 || zone >= y.areas {
			log.Printf("store: dropping %d vehicles under invalid zone key %q", len(vehicles), key)
			continue
		}
		for _, v := range vehicles {
			v.Zone = zone
			if _, dup := seen[v.VIN]; dup {
				log.Printf("store: snapshot contains duplicate vin %s", v.VIN)
			}
			seen[v.VIN] = struct{}{}
		}
		y.zones[zone] = vehicles
	}
	if total := y.totalLocked(); total > y.maxCapacity {
		log.Printf("store: snapshot holds %d vehicles, exceeding capacity %d", total, y.maxCapacity)
	}
	y.history = history
}

// Add validates the request, checks the occupancy invariants and checks the
// vehicle in: it is appended to its zone in insertion order and a matching
// open ledger entry is created, all as one atomic step.
func (y *Yard) Add(req AddRequest) (model.Vehicle, error) {
	vin, err := parse.ValidateVIN(req.VIN)
	if err != nil {
		return model.Vehicle{}, err
	}
	code, err := parse.ValidateStorageCode(req.StorageCode)
	if err != nil {
		return model.Vehicle{}, err
	}
	if err := validateZone(req.Zone, y.areas); err != nil {
		return model.Vehicle{}, err
	}
	if req.ReadyDate != "" {
		if _, err := time.Parse(model.DateLayout, req.ReadyDate); err != nil {
			return model.Vehicle{}, fmt.Errorf("%w: readiness date %q is not YYYY-MM-DD", apperr.ErrValidation, req.ReadyDate)
		}
	}
	if req.ReadyTime != "" {
		if _, err := time.Parse("15:04", req.ReadyTime); err != nil {
			return model.Vehicle{}, fmt.Errorf("%w: readiness time %q is not HH:MM", apperr.ErrValidation, req.ReadyTime)
		}
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	for _, zone := range y.zones {
		for _, parked := range zone {
			if parked.VIN == vin {
				return model.Vehicle{}, apperr.ErrDuplicateVIN
			}
		}
	}
	if y.totalLocked() >= y.maxCapacity {
		return model.Vehicle{}, apperr.ErrCapacityExceeded
	}

	now := y.now()
	v := &model.Vehicle{
		ID:          uuid.NewString(),
		VIN:         vin,
		StorageCode: code,
		Zone:        req.Zone,
		InTime:      now.Format(model.TimeLayout),
		ReadyDate:   req.ReadyDate,
		ReadyTime:   req.ReadyTime,
		Notes:       req.Notes,
		Extras:      y.extrasFn(req.Notes, now),
	}

	y.zones[req.Zone] = append(y.zones[req.Zone], v)
	y.history = append(y.history, &model.HistoryEntry{
		ID:          v.ID,
		VIN:         v.VIN,
		StorageCode: v.StorageCode,
		ZoneIn:      req.Zone + 1,
		InTime:      v.InTime,
		ReadyDate:   v.ReadyDate,
		ReadyTime:   v.ReadyTime,
	})

	y.persistOccupancyLocked()
	y.persistHistoryLocked()

	return cloneVehicle(v), nil
}

// Remove checks the vehicle out: the record is detached from its zone and the
// most recent open ledger entry for its VIN is closed with a frozen fee
// snapshot. A missing open entry is a silent no-op.
func (y *Yard) Remove(id string) (model.Vehicle, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	v, err := y.detachLocked(id)
	if err != nil {
		return model.Vehicle{}, err
	}

	outTime := y.now()
	y.closeEntryLocked(v, outTime)

	y.persistOccupancyLocked()
	y.persistHistoryLocked()

	return cloneVehicle(v), nil
}

// Move relocates the vehicle to the target zone. The record is never
// observable absent from both zones or present in both, and the ledger is
// not touched.
func (y *Yard) Move(id string, targetZone int) error {
	if err := validateZone(targetZone, y.areas); err != nil {
		return err
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	v, err := y.detachLocked(id)
	if err != nil {
		return err
	}
	v.Zone = targetZone
	y.zones[targetZone] = append(y.zones[targetZone], v)

	y.persistOccupancyLocked()
	return nil
}

// FindByID returns the parked vehicle with the given record id.
func (y *Yard) FindByID(id string) (model.Vehicle, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	for _, zone := range y.zones {
		for _, v := range zone {
			if v.ID == id {
				return cloneVehicle(v), nil
			}
		}
	}
	return model.Vehicle{}, fmt.Errorf("%w: vehicle %s", apperr.ErrNotFound, id)
}

// FindByIdentifier returns the first parked vehicle whose VIN or storage code
// contains the query, scanning zones in ascending index order and records in
// insertion order. Matching is case-insensitive substring, not ranked.
func (y *Yard) FindByIdentifier(query string) (model.Vehicle, error) {
	q := normalizeQuery(query)

	y.mu.Lock()
	defer y.mu.Unlock()

	for _, zone := range y.zones {
		for _, v := range zone {
			if contains(v.VIN, q) || contains(v.StorageCode, q) {
				return cloneVehicle(v), nil
			}
		}
	}
	return model.Vehicle{}, fmt.Errorf("%w: no parked vehicle matches %q", apperr.ErrNotFound, query)
}

// Zones returns a read-only snapshot of every zone in ascending order.
func (y *Yard) Zones() []ZoneSummary {
	y.mu.Lock()
	defer y.mu.Unlock()

	out := make([]ZoneSummary, y.areas)
	for i, zone := range y.zones {
		vehicles := make([]model.Vehicle, 0, len(zone))
		for _, v := range zone {
			vehicles = append(vehicles, cloneVehicle(v))
		}
		out[i] = ZoneSummary{Zone: i, Vehicles: vehicles}
	}
	return out
}

// TotalParked returns the aggregate vehicle count across all zones.
func (y *Yard) TotalParked() int {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.totalLocked()
}

// MaxCapacity returns the configured aggregate capacity bound.
func (y *Yard) MaxCapacity() int {
	return y.maxCapacity
}

// Areas returns the number of zones.
func (y *Yard) Areas() int {
	return y.areas
}

// History returns the ledger in reverse append order, newest first, filtered
// by an optional case-insensitive substring query and capped at limit
// entries (0 means no cap).
func (y *Yard) History(query string, limit int) []model.HistoryEntry {
	q := normalizeQuery(query)

	y.mu.Lock()
	defer y.mu.Unlock()

	out := make([]model.HistoryEntry, 0, len(y.history))
	for i := len(y.history) - 1; i >= 0; i-- {
		h := y.history[i]
		if q != "" && !contains(h.VIN, q) && !contains(h.StorageCode, q) {
			continue
		}
		out = append(out, cloneEntry(h))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// SearchHistory returns the most recent ledger entry whose VIN or storage
// code contains the query.
func (y *Yard) SearchHistory(query string) (model.HistoryEntry, error) {
	q := normalizeQuery(query)

	y.mu.Lock()
	defer y.mu.Unlock()

	for i := len(y.history) - 1; i >= 0; i-- {
		h := y.history[i]
		if contains(h.VIN, q) || contains(h.StorageCode, q) {
			return cloneEntry(h), nil
		}
	}
	return model.HistoryEntry{}, fmt.Errorf("%w: no history entry matches %q", apperr.ErrNotFound, query)
}

// RangeQuery returns, in append order, the entries whose timestamp in the
// given field falls within [from 00:00, to 23:59]. Dates are YYYY-MM-DD and
// comparison is exact minute resolution with no timezone handling.
func (y *Yard) RangeQuery(field TimeField, from, to string) ([]model.HistoryEntry, error) {
	fromDay, err := time.Parse(model.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("%w: from date %q is not YYYY-MM-DD", apperr.ErrValidation, from)
	}
	toDay, err := time.Parse(model.DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("%w: to date %q is not YYYY-MM-DD", apperr.ErrValidation, to)
	}
	end := time.Date(toDay.Year(), toDay.Month(), toDay.Day(), 23, 59, 0, 0, time.UTC)

	y.mu.Lock()
	defer y.mu.Unlock()

	var out []model.HistoryEntry
	for _, h := range y.history {
		var ts string
		switch field {
		case FieldCheckIn:
			ts = h.InTime
		case FieldCheckOut:
			ts = h.OutTime
		default:
			return nil, fmt.Errorf("%w: unknown time field %q", apperr.ErrValidation, field)
		}
		if ts == "" {
			continue
		}
		dt, err := time.Parse(model.TimeLayout, ts)
		if err != nil {
			continue
		}
		if !dt.Before(fromDay) && !dt.After(end) {
			out = append(out, cloneEntry(h))
		}
	}
	return out, nil
}

// FeePreview computes the advisory current fee for a parked vehicle without
// mutating anything.
func (y *Yard) FeePreview(id string) (model.FeeResult, error) {
	v, err := y.FindByID(id)
	if err != nil {
		return model.FeeResult{}, err
	}
	return y.feeFn(v.ReadyDate, v.Extras, y.now()), nil
}

// Parked returns a flat snapshot of every parked vehicle, zones ascending.
func (y *Yard) Parked() []model.Vehicle {
	y.mu.Lock()
	defer y.mu.Unlock()

	var out []model.Vehicle
	for _, zone := range y.zones {
		for _, v := range zone {
			out = append(out, cloneVehicle(v))
		}
	}
	return out
}

// --- internals ---

// detachLocked removes and returns the record with the given id.
func (y *Yard) detachLocked(id string) (*model.Vehicle, error) {
	for zone, vehicles := range y.zones {
		for i, v := range vehicles {
			if v.ID == id {
				y.zones[zone] = append(vehicles[:i:i], vehicles[i+1:]...)
				return v, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: vehicle %s", apperr.ErrNotFound, id)
}

// closeEntryLocked closes the most recent open ledger entry for the
// vehicle's VIN, freezing the fee snapshot. No matching open entry is a
// silent no-op.
func (y *Yard) closeEntryLocked(v *model.Vehicle, outTime time.Time) {
	for i := len(y.history) - 1; i >= 0; i-- {
		h := y.history[i]
		if h.VIN == v.VIN && h.Open() {
			h.OutTime = outTime.Format(model.TimeLayout)
			h.ZoneOut = v.Zone + 1
			result := y.feeFn(v.ReadyDate, v.Extras, outTime)
			h.Fee = &result
			return
		}
	}
}

func (y *Yard) totalLocked() int {
	total := 0
	for _, zone := range y.zones {
		total += len(zone)
	}
	return total
}

// persistOccupancyLocked snapshots the zone table. A failed write is logged
// and the in-memory mutation stands; the storage layer's atomic rename
// guarantees the previous snapshot is never left half written.
func (y *Yard) persistOccupancyLocked() {
	occ := make(map[string][]*model.Vehicle, y.areas)
	for i, zone := range y.zones {
		occ[strconv.Itoa(i)] = zone
	}
	if err := y.persister.SaveOccupancy(occ); err != nil {
		log.Printf("store: failed to persist occupancy: %v", err)
	}
}

func (y *Yard) persistHistoryLocked() {
	if err := y.persister.SaveHistory(y.history); err != nil {
		log.Printf("store: failed to persist history: %v", err)
	}
}

func validateZone(zone, areas int) error {
	if zone < 0 || zone >= areas {
		return fmt.Errorf("%w: zone %d out of range [0, %d)", apperr.ErrValidation, zone, areas)
	}
	return nil
}

func normalizeQuery(q string) string {
	return strings.ToUpper(strings.TrimSpace(q))
}

func contains(field, q string) bool {
	return q != "" && strings.Contains(field, q)
}

func cloneVehicle(v *model.Vehicle) model.Vehicle {
	out := *v
	out.Extras = append([]model.Extra(nil), v.Extras...)
	return out
}

func cloneEntry(h *model.HistoryEntry) model.HistoryEntry {
	out := *h
	if h.Fee != nil {
		fee := *h.Fee
		out.Fee = &fee
	}
	return out
}
