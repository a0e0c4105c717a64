package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storage-backend/config"
	"vehicle-storage-backend/internal/fee"
	"vehicle-storage-backend/internal/model"
	"vehicle-storage-backend/internal/store"
)

type noopPersister struct{}

func (noopPersister) SaveOccupancy(map[string][]*model.Vehicle) error { return nil }
func (noopPersister) SaveHistory([]*model.HistoryEntry) error         { return nil }

func setupRouter(t *testing.T) (*gin.Engine, *store.Yard) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	calc := fee.NewCalculator(config.FeeConfig{GraceDays: 7, BaseFee: "25.00", DailyRate: "12.50"})
	yard := store.New(16, 650, calc.Calculate, fee.ExtrasFromNotes, noopPersister{})

	handler := NewHandler(yard, nil, nil, nil)

	r := gin.New()
	r.GET("/api/zones", handler.GetZones)
	r.POST("/api/vehicles", handler.AddVehicle)
	r.DELETE("/api/vehicles/:id", handler.RemoveVehicle)
	r.POST("/api/vehicles/:id/move", handler.MoveVehicle)
	r.GET("/api/vehicles/:id/fee", handler.GetFeePreview)
	r.GET("/api/search", handler.Search)
	r.GET("/api/history", handler.GetHistory)
	r.GET("/api/export/current.csv", handler.ExportCurrent)
	return r, yard
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return serve(router, w, req)
}

func serve(router *gin.Engine, w *httptest.ResponseRecorder, req *http.Request) *httptest.ResponseRecorder {
	router.ServeHTTP(w, req)
	return w
}

func addVehicle(t *testing.T, router *gin.Engine, zone int, vin, code string) model.Vehicle {
	t.Helper()

	w := doJSON(router, "POST", "/api/vehicles", gin.H{
		"zone":         zone,
		"vin":          vin,
		"storage_code": code,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var v model.Vehicle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestAddVehicleAndZonesOverview(t *testing.T) {
	router, _ := setupRouter(t)

	v := addVehicle(t, router, 2, "WVWZZZ1JZ3W386752", "LK12345")
	assert.NotEmpty(t, v.ID)
	assert.NotEmpty(t, v.InTime)

	w := doJSON(router, "GET", "/api/zones", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp zonesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Occupied)
	assert.Equal(t, 649, resp.Free)
	assert.Equal(t, 650, resp.MaxCapacity)
	require.Len(t, resp.Zones, 16)
	assert.Len(t, resp.Zones[2].Vehicles, 1)
}

func TestAddVehicleRejectsBadInput(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{
			name: "missing vin",
			body: gin.H{"zone": 0, "storage_code": "LK12345"},
			code: http.StatusBadRequest,
		},
		{
			name: "malformed vin",
			body: gin.H{"zone": 0, "vin": "IOQZZZ1JZ3W386752", "storage_code": "LK12345"},
			code: http.StatusBadRequest,
		},
		{
			name: "zone out of range",
			body: gin.H{"zone": 16, "vin": "WVWZZZ1JZ3W386752", "storage_code": "LK12345"},
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/vehicles", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAddVehicleDuplicateVINConflicts(t *testing.T) {
	router, _ := setupRouter(t)

	addVehicle(t, router, 0, "WVWZZZ1JZ3W386752", "LK11111")

	w := doJSON(router, "POST", "/api/vehicles", gin.H{
		"zone":         5,
		"vin":          "WVWZZZ1JZ3W386752",
		"storage_code": "LK22222",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRemoveVehicleClosesStay(t *testing.T) {
	router, _ := setupRouter(t)

	v := addVehicle(t, router, 3, "WVWZZZ1JZ3W386752", "LK12345")

	w := doJSON(router, "DELETE", "/api/vehicles/"+v.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "DELETE", "/api/vehicles/"+v.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "GET", "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, v.ID, entries[0].ID)
	assert.Equal(t, 4, entries[0].ZoneIn)
	assert.Equal(t, 4, entries[0].ZoneOut)
	assert.NotEmpty(t, entries[0].OutTime)
	require.NotNil(t, entries[0].Fee)
	assert.Equal(t, model.StatusNoAppointment, entries[0].Fee.Status)
}

func TestMoveVehicle(t *testing.T) {
	router, _ := setupRouter(t)

	v := addVehicle(t, router, 0, "WVWZZZ1JZ3W386752", "LK12345")

	w := doJSON(router, "POST", "/api/vehicles/"+v.ID+"/move", gin.H{"to_zone": 7})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, "POST", "/api/vehicles/"+v.ID+"/move", gin.H{"to_zone": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", "/api/zones", nil)
	var resp zonesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Zones[0].Vehicles)
	assert.Len(t, resp.Zones[7].Vehicles, 1)
}

func TestFeePreview(t *testing.T) {
	router, _ := setupRouter(t)

	v := addVehicle(t, router, 0, "WVWZZZ1JZ3W386752", "LK12345")

	w := doJSON(router, "GET", "/api/vehicles/"+v.ID+"/fee", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.FeeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, model.StatusNoAppointment, result.Status)

	w = doJSON(router, "GET", "/api/vehicles/no-such-id/fee", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchFallsBackToHistory(t *testing.T) {
	router, _ := setupRouter(t)

	v := addVehicle(t, router, 1, "WVWZZZ1JZ3W386752", "LK12345")

	w := doJSON(router, "GET", "/api/search?q=lk123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var current []currentSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &current))
	require.Len(t, current, 1)
	assert.Equal(t, "current", current[0].Source)
	assert.Equal(t, 2, current[0].Zone)

	doJSON(router, "DELETE", "/api/vehicles/"+v.ID, nil)

	w = doJSON(router, "GET", "/api/search?q=lk123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var past []historySearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &past))
	require.Len(t, past, 1)
	assert.Equal(t, "history", past[0].Source)

	w = doJSON(router, "GET", "/api/search?q=nothing-matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = doJSON(router, "GET", "/api/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHistoryLimitValidation(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, "GET", "/api/history?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", "/api/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCurrentCSV(t *testing.T) {
	router, _ := setupRouter(t)

	addVehicle(t, router, 4, "WVWZZZ1JZ3W386752", "LK12345")

	w := doJSON(router, "GET", "/api/export/current.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "storage_current_")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Zone;VIN;Storage code;Check-in;Ready date;Ready time;Notes", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], fmt.Sprintf("%d;%s;%s", 5, "WVWZZZ1JZ3W386752", "LK12345")))
}
