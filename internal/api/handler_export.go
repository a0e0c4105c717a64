package api

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"vehicle-storage-backend/internal/model"
	"vehicle-storage-backend/internal/store"
)

// ExportCurrent handles GET /api/export/current.csv, a semicolon-delimited
// snapshot of every parked vehicle with the zone shown 1-based.
func (h *Handler) ExportCurrent(c *gin.Context) {
	filename := fmt.Sprintf("storage_current_%s.csv", time.Now().Format("20060102_1504"))

	records := [][]string{{"Zone", "VIN", "Storage code", "Check-in", "Ready date", "Ready time", "Notes"}}
	for _, v := range h.yard.Parked() {
		records = append(records, []string{
			fmt.Sprintf("%d", v.Zone+1),
			v.VIN,
			v.StorageCode,
			v.InTime,
			v.ReadyDate,
			v.ReadyTime,
			v.Notes,
		})
	}

	writeCSV(c, filename, records)
}

// ExportCheckins handles GET /api/export/checkins.csv filtered by check-in
// date range.
func (h *Handler) ExportCheckins(c *gin.Context) {
	h.exportRange(c, store.FieldCheckIn, "history_checkin")
}

// ExportCheckouts handles GET /api/export/checkouts.csv filtered by
// check-out date range. Open entries never match.
func (h *Handler) ExportCheckouts(c *gin.Context) {
	h.exportRange(c, store.FieldCheckOut, "history_checkout")
}

func (h *Handler) exportRange(c *gin.Context, field store.TimeField, prefix string) {
	from := c.Query("from")
	to := c.Query("to")

	entries, err := h.yard.RangeQuery(field, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}

	records := [][]string{{"VIN", "Storage code", "Zone in", "Check-in", "Zone out", "Check-out", "Ready date", "Fee status", "Grand total"}}
	for _, e := range entries {
		records = append(records, []string{
			e.VIN,
			e.StorageCode,
			fmt.Sprintf("%d", e.ZoneIn),
			e.InTime,
			zoneOutColumn(e),
			e.OutTime,
			e.ReadyDate,
			feeStatusColumn(e),
			feeTotalColumn(e),
		})
	}

	writeCSV(c, fmt.Sprintf("%s_%s_%s.csv", prefix, from, to), records)
}

func zoneOutColumn(e model.HistoryEntry) string {
	if e.Open() {
		return ""
	}
	return fmt.Sprintf("%d", e.ZoneOut)
}

func feeStatusColumn(e model.HistoryEntry) string {
	if e.Fee == nil {
		return ""
	}
	return string(e.Fee.Status)
}

func feeTotalColumn(e model.HistoryEntry) string {
	if e.Fee == nil {
		return ""
	}
	return e.Fee.GrandTotal.String()
}

func writeCSV(c *gin.Context, filename string, records [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	w.Comma = ';'
	if err := w.WriteAll(records); err != nil {
		_ = c.Error(err)
	}
}
