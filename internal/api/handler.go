package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vehicle-storage-backend/internal/apperr"
	"vehicle-storage-backend/internal/store"
)

// Recognizer abstracts the external text-recognition service so handlers can
// be tested without it.
type Recognizer interface {
	Recognize(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	yard       *store.Yard
	db         *gorm.DB
	webpush    *webpush.Options
	recognizer Recognizer
}

// NewHandler creates a new API handler.
func NewHandler(yard *store.Yard, db *gorm.DB, webpushOptions *webpush.Options, recognizer Recognizer) *Handler {
	return &Handler{
		yard:       yard,
		db:         db,
		webpush:    webpushOptions,
		recognizer: recognizer,
	}
}

// abortWithError translates the core error taxonomy into HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrExtraction):
		status = http.StatusUnprocessableEntity
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
