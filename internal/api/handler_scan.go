package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-storage-backend/internal/parse"
)

type scanResponse struct {
	VIN         string `json:"vin"`
	StorageCode string `json:"storage_code"`
	Text        string `json:"text"`
}

// Scan handles POST /api/scan. The uploaded image goes to the recognizer
// service and the returned text is sifted for a VIN and a storage code.
func (h *Handler) Scan(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image upload"})
		return
	}
	defer file.Close()

	text, err := h.recognizer.Recognize(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	extracted, err := parse.ExtractFromText(text)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, scanResponse{
		VIN:         extracted.VIN,
		StorageCode: extracted.StorageCode,
		Text:        text,
	})
}
