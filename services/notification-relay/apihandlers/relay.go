package apihandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/saladoop/shift-report-backend/pkg/apihelpers/middlewares"
	"github.com/saladoop/shift-report-backend/pkg/notification"
)

const (
	MSG_METHOD_NOT_ALLOWED = "Method not allowed"
	MSG_CONFIG_ERROR       = "Server configuration error"
	MSG_SEND_FAILED        = "Failed to send notification"
	MSG_INVALID_BODY       = "Invalid request body"
	MSG_SENT               = "Notification sent"
)

func (h *HttpEndpoints) AddRelayAPI(rg *gin.RouterGroup) {
	relayGroup := rg.Group("/relay")
	{
		relayGroup.OPTIONS("/send-report", func(c *gin.Context) { c.Status(http.StatusOK) })
		relayGroup.POST("/send-report",
			mw.RateLimit(h.limiter),
			mw.LimitPayloadSize(h.maxPayloadSize),
			h.sendReport,
		)
	}
}

// sendReport renders the payload right away so configuration and rendering problems reach the
// caller, then hands delivery to the dispatcher.
func (h *HttpEndpoints) sendReport(c *gin.Context) {
	var payload notification.ReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		if errors.Is(err, io.EOF) {
			slog.Warn("empty relay request body")
		} else {
			slog.Warn("failed to parse relay payload", slog.String("error", err.Error()))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": MSG_INVALID_BODY})
		return
	}

	if err := h.relay.CheckWebhookConfig(); err != nil {
		slog.Error("relay misconfigured", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": MSG_CONFIG_ERROR})
		return
	}

	rendered, err := h.relay.Render(payload)
	if err != nil {
		slog.Error("failed to render report notification", slog.String("reporter", payload.ReporterName), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": MSG_SEND_FAILED})
		return
	}

	accepted := h.dispatcher.Submit("relay:"+payload.ReporterName+":"+payload.Timestamp, func(ctx context.Context) {
		h.relay.Deliver(ctx, rendered)
	})
	if !accepted {
		c.JSON(http.StatusInternalServerError, gin.H{"error": MSG_SEND_FAILED})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": MSG_SENT})
}
