package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-storage-backend/internal/store"
)

// zonesResponse is the occupancy overview for the yard map.
type zonesResponse struct {
	Occupied    int                 `json:"occupied"`
	Free        int                 `json:"free"`
	MaxCapacity int                 `json:"max_capacity"`
	Zones       []store.ZoneSummary `json:"zones"`
}

// GetZones handles GET /api/zones.
func (h *Handler) GetZones(c *gin.Context) {
	occupied := h.yard.TotalParked()
	c.JSON(http.StatusOK, zonesResponse{
		Occupied:    occupied,
		Free:        h.yard.MaxCapacity() - occupied,
		MaxCapacity: h.yard.MaxCapacity(),
		Zones:       h.yard.Zones(),
	})
}

type addVehicleRequest struct {
	Zone        *int   `json:"zone" binding:"required"`
	VIN         string `json:"vin" binding:"required"`
	StorageCode string `json:"storage_code" binding:"required"`
	ReadyDate   string `json:"ready_date"`
	ReadyTime   string `json:"ready_time"`
	Notes       string `json:"notes"`
}

// AddVehicle handles POST /api/vehicles.
func (h *Handler) AddVehicle(c *gin.Context) {
	var req addVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.yard.Add(store.AddRequest{
		Zone:        *req.Zone,
		VIN:         req.VIN,
		StorageCode: req.StorageCode,
		ReadyDate:   req.ReadyDate,
		ReadyTime:   req.ReadyTime,
		Notes:       req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

// RemoveVehicle handles DELETE /api/vehicles/:id.
func (h *Handler) RemoveVehicle(c *gin.Context) {
	removed, err := h.yard.Remove(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

type moveVehicleRequest struct {
	ToZone *int `json:"to_zone" binding:"required"`
}

// MoveVehicle handles POST /api/vehicles/:id/move.
func (h *Handler) MoveVehicle(c *gin.Context) {
	var req moveVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.yard.Move(c.Param("id"), *req.ToZone); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFeePreview handles GET /api/vehicles/:id/fee. The result is advisory:
// nothing is frozen until check-out.
func (h *Handler) GetFeePreview(c *gin.Context) {
	result, err := h.yard.FeePreview(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
