package apihandlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saladoop/shift-report-backend/pkg/db"
	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	"github.com/saladoop/shift-report-backend/pkg/submission"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ReportReader interface {
	GetReports(scope reportsDB.Scope, page int64, limit int64) ([]reportTypes.Report, *db.PaginationInfos, error)
	GetReportByID(reportID string) (reportTypes.Report, error)
}

type ReportSubmitter interface {
	Submit(ctx context.Context, sub submission.Submission) (submission.Result, error)
}

type PhotoOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type HttpEndpoints struct {
	tokenSignKey          string
	privilegedViewerEmail string
	reportsDBConn         ReportReader
	submitter             ReportSubmitter
	photos                PhotoOpener
	maxPayloadSize        int64
	maxPhotoSize          int64
}

func NewHTTPHandler(
	tokenSignKey string,
	privilegedViewerEmail string,
	reportsDBConn ReportReader,
	submitter ReportSubmitter,
	photos PhotoOpener,
	maxPayloadSize int64,
	maxPhotoSize int64,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:          tokenSignKey,
		privilegedViewerEmail: privilegedViewerEmail,
		reportsDBConn:         reportsDBConn,
		submitter:             submitter,
		photos:                photos,
		maxPayloadSize:        maxPayloadSize,
		maxPhotoSize:          maxPhotoSize,
	}
}
