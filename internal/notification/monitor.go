package notification

import (
	"context"
	"log"
	"time"

	"vehicle-storage-backend/config"
	"vehicle-storage-backend/internal/store"
)

// Monitor periodically sweeps the parked vehicles and dispatches an alert
// for each one whose fee status has crossed into an overdue tier since the
// last sweep. A vehicle is alerted at most once per stay.
type Monitor struct {
	cfg        *config.Config
	yard       *store.Yard
	workerPool *WorkerPool
	notified   map[string]struct{}
}

// NewMonitor creates the overdue monitor with its own worker pool.
func NewMonitor(cfg *config.Config, yard *store.Yard, pool *WorkerPool) *Monitor {
	return &Monitor{
		cfg:        cfg,
		yard:       yard,
		workerPool: pool,
		notified:   make(map[string]struct{}),
	}
}

// Run starts the sweep loop.
func (m *Monitor) Run(ctx context.Context) {
	if !m.cfg.Monitor.Enabled {
		log.Println("Overdue monitor is disabled. Not starting.")
		return
	}
	log.Println("Starting overdue monitor...")

	m.workerPool.Start(ctx)

	interval := time.Duration(m.cfg.Monitor.IntervalSeconds) * time.Second
	m.SweepOnce()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Overdue monitor shutting down.")
			return
		case <-timer.C:
			m.SweepOnce()
			timer.Reset(interval)
		}
	}
}

// SweepOnce performs a single sweep over the parked vehicles.
func (m *Monitor) SweepOnce() {
	parked := m.yard.Parked()

	// Drop bookkeeping for vehicles that have been checked out.
	current := make(map[string]struct{}, len(parked))
	for _, v := range parked {
		current[v.ID] = struct{}{}
	}
	for id := range m.notified {
		if _, ok := current[id]; !ok {
			delete(m.notified, id)
		}
	}

	for _, v := range parked {
		if _, done := m.notified[v.ID]; done {
			continue
		}
		result, err := m.yard.FeePreview(v.ID)
		if err != nil {
			// Checked out between the snapshot and the preview.
			continue
		}
		if !result.Status.Overdue() {
			continue
		}
		m.notified[v.ID] = struct{}{}
		m.workerPool.Dispatch(Alert{
			VehicleID:   v.ID,
			VIN:         v.VIN,
			Zone:        v.Zone,
			OverdueDays: result.OverdueDays,
		})
	}
}
