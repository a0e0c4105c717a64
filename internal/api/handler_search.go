package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vehicle-storage-backend/internal/apperr"
	"vehicle-storage-backend/internal/model"
)

type currentSearchResult struct {
	model.Vehicle
	Zone   int    `json:"zone"`
	Source string `json:"source"`
}

type historySearchResult struct {
	model.HistoryEntry
	Source string `json:"source"`
}

// Search handles GET /api/search. It scans the currently parked vehicles
// first and falls back to the most recent matching ledger entry; results
// carry a source marker so callers can tell the two apart. An empty query or
// a miss in both yields an empty list rather than an error.
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, []any{})
		return
	}

	if v, err := h.yard.FindByIdentifier(query); err == nil {
		c.JSON(http.StatusOK, []currentSearchResult{{
			Vehicle: v,
			Zone:    v.Zone + 1,
			Source:  "current",
		}})
		return
	} else if !errors.Is(err, apperr.ErrNotFound) {
		abortWithError(c, err)
		return
	}

	entry, err := h.yard.SearchHistory(query)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusOK, []any{})
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, []historySearchResult{{
		HistoryEntry: entry,
		Source:       "history",
	}})
}
