package apihandlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/saladoop/shift-report-backend/pkg/blobstore"
)

func (h *HttpEndpoints) AddPhotosAPI(rg *gin.RouterGroup) {
	rg.GET("/photos/*key", h.getPhoto)
}

// photo URLs are embedded in webhook messages and emails, so this route is not authenticated
func (h *HttpEndpoints) getPhoto(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	reader, contentType, err := h.photos.Open(c.Request.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrNotFound), errors.Is(err, blobstore.ErrInvalidKey):
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		default:
			slog.Error("failed to open photo", slog.String("key", key), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photo"})
		}
		return
	}
	defer reader.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		slog.Warn("photo transfer interrupted", slog.String("key", key), slog.String("error", err.Error()))
	}
}
