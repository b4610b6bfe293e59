package apihandlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saladoop/shift-report-backend/pkg/notification"
	"github.com/saladoop/shift-report-backend/pkg/ratelimit"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MethodNotAllowedHandle is installed as the router's NoMethod handler.
func MethodNotAllowedHandle(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": MSG_METHOD_NOT_ALLOWED})
}

type ReportRelay interface {
	CheckWebhookConfig() error
	Render(p notification.ReportPayload) (*notification.RenderedReport, error)
	Deliver(ctx context.Context, rendered *notification.RenderedReport) notification.DeliveryResult
}

type JobDispatcher interface {
	Submit(name string, fn notification.Job) bool
}

type HttpEndpoints struct {
	relay          ReportRelay
	dispatcher     JobDispatcher
	limiter        ratelimit.Limiter
	maxPayloadSize int64
}

func NewHTTPHandler(
	relay ReportRelay,
	dispatcher JobDispatcher,
	limiter ratelimit.Limiter,
	maxPayloadSize int64,
) *HttpEndpoints {
	return &HttpEndpoints{
		relay:          relay,
		dispatcher:     dispatcher,
		limiter:        limiter,
		maxPayloadSize: maxPayloadSize,
	}
}
