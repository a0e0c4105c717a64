package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storage-backend/config"
	"vehicle-storage-backend/internal/api"
	"vehicle-storage-backend/internal/fee"
	"vehicle-storage-backend/internal/model"
	"vehicle-storage-backend/internal/persist"
	"vehicle-storage-backend/internal/store"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 60
	cfg.Yard.Rows = 4
	cfg.Yard.Cols = 4
	cfg.Yard.MaxCapacity = 650
	cfg.Fee = config.FeeConfig{GraceDays: 7, BaseFee: "25.00", DailyRate: "12.50"}
	return cfg
}

func newYard(cfg *config.Config, files *persist.Files) (*store.Yard, error) {
	occupancy, err := files.LoadOccupancy()
	if err != nil {
		return nil, err
	}
	history, err := files.LoadHistory()
	if err != nil {
		return nil, err
	}

	calc := fee.NewCalculator(cfg.Fee)
	yard := store.New(cfg.Yard.Areas(), cfg.Yard.MaxCapacity, calc.Calculate, fee.ExtrasFromNotes, files)
	yard.Restore(occupancy, history)
	return yard, nil
}

// TestStayLifecycle walks one vehicle through check-in, fee preview, a zone
// move and check-out over the HTTP surface, verifying the on-disk snapshots
// at each step and that a restart restores the same state.
func TestStayLifecycle(t *testing.T) {
	tmp := t.TempDir()
	dataFile := filepath.Join(tmp, "data.json")
	historyFile := filepath.Join(tmp, "history.json")

	cfg := newTestConfig()
	files := persist.NewFiles(dataFile, historyFile)
	yard, err := newYard(cfg, files)
	require.NoError(t, err)

	router := api.NewRouter(cfg, api.NewHandler(yard, nil, nil, nil))

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var raw []byte
		if body != nil {
			raw, _ = json.Marshal(body)
		}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	const vin = "WVWZZZ1JZ3W386752"
	readyDate := time.Now().AddDate(0, 0, -10).Format(model.DateLayout)

	var vehicleID string
	t.Run("check-in persists occupancy", func(t *testing.T) {
		w := do("POST", "/api/vehicles", map[string]any{
			"zone":         2,
			"vin":          vin,
			"storage_code": "LK12345",
			"ready_date":   readyDate,
			"notes":        "Tire change 40 EUR",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var v model.Vehicle
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
		vehicleID = v.ID
		require.Len(t, v.Extras, 1)
		assert.True(t, v.Extras[0].Cost.Equal(decimal.NewFromInt(40)))

		raw, err := os.ReadFile(dataFile)
		require.NoError(t, err)
		assert.Contains(t, string(raw), vin)
	})

	t.Run("fee preview reflects overdue days", func(t *testing.T) {
		w := do("GET", "/api/vehicles/"+vehicleID+"/fee", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result model.FeeResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, model.StatusMildlyOverdue, result.Status)
		assert.Equal(t, 3, result.OverdueDays)
		// 25 base + 3 * 12.50 daily + 40 extras
		assert.True(t, result.GrandTotal.Equal(decimal.RequireFromString("102.5")), result.GrandTotal.String())
	})

	t.Run("move relocates without touching the ledger", func(t *testing.T) {
		w := do("POST", "/api/vehicles/"+vehicleID+"/move", map[string]any{"to_zone": 9})
		require.Equal(t, http.StatusNoContent, w.Code)

		raw, err := os.ReadFile(historyFile)
		if err == nil {
			var entries []model.HistoryEntry
			require.NoError(t, json.Unmarshal(raw, &entries))
			for _, e := range entries {
				assert.True(t, e.Open(), "move must not close the stay")
			}
		}
	})

	t.Run("zone overview is served from cache within the TTL", func(t *testing.T) {
		first := do("GET", "/api/zones", nil)
		require.Equal(t, http.StatusOK, first.Code)

		do("POST", "/api/vehicles", map[string]any{
			"zone":         0,
			"vin":          "WAUZZZ8K9BA123456",
			"storage_code": "LK99999",
		})

		second := do("GET", "/api/zones", nil)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, first.Body.String(), second.Body.String())
	})

	t.Run("check-out freezes the fee into the ledger", func(t *testing.T) {
		w := do("DELETE", "/api/vehicles/"+vehicleID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		raw, err := os.ReadFile(historyFile)
		require.NoError(t, err)

		var entries []model.HistoryEntry
		require.NoError(t, json.Unmarshal(raw, &entries))

		var closed *model.HistoryEntry
		for i := range entries {
			if entries[i].ID == vehicleID {
				closed = &entries[i]
			}
		}
		require.NotNil(t, closed)
		assert.False(t, closed.Open())
		assert.Equal(t, 10, closed.ZoneOut)
		require.NotNil(t, closed.Fee)
		assert.True(t, closed.Fee.GrandTotal.Equal(decimal.RequireFromString("102.5")))
	})

	t.Run("restart restores state from the snapshots", func(t *testing.T) {
		restored, err := newYard(cfg, persist.NewFiles(dataFile, historyFile))
		require.NoError(t, err)

		assert.Equal(t, 1, restored.TotalParked())

		entries := restored.History("", 0)
		require.NotEmpty(t, entries)
		var found bool
		for _, e := range entries {
			if e.ID == vehicleID {
				found = true
				require.NotNil(t, e.Fee)
				assert.True(t, e.Fee.GrandTotal.Equal(decimal.RequireFromString("102.5")))
			}
		}
		assert.True(t, found)
	})
}

// TestRateLimiting exercises the per-IP limiter with an IP taken from a
// proxy header.
func TestRateLimiting(t *testing.T) {
	tmp := t.TempDir()

	cfg := newTestConfig()
	cfg.Server.RateLimitPerSec = 1
	cfg.Server.RateLimitBurst = 2
	cfg.Server.RequestIPHeader = "X-Real-IP"

	files := persist.NewFiles(filepath.Join(tmp, "data.json"), filepath.Join(tmp, "history.json"))
	yard, err := newYard(cfg, files)
	require.NoError(t, err)

	router := api.NewRouter(cfg, api.NewHandler(yard, nil, nil, nil))

	get := func(ip string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/history", nil)
		req.Header.Set("X-Real-IP", ip)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1"))

	// A different client keeps its own budget.
	assert.Equal(t, http.StatusOK, get("10.0.0.2"))
}
