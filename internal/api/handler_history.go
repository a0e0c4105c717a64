package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// historyLimit caps how many ledger entries a single request may return.
const historyLimit = 200

// GetHistory handles GET /api/history. Entries come back newest first,
// optionally filtered by a case-insensitive substring on VIN or storage
// code, capped at 200 entries.
func (h *Handler) GetHistory(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	limit := historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	c.JSON(http.StatusOK, h.yard.History(query, limit))
}
