package apihandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/saladoop/shift-report-backend/pkg/apihelpers"
	mw "github.com/saladoop/shift-report-backend/pkg/apihelpers/middlewares"
	"github.com/saladoop/shift-report-backend/pkg/blobstore"
	"github.com/saladoop/shift-report-backend/pkg/db"
	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	"github.com/saladoop/shift-report-backend/pkg/submission"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
	"github.com/saladoop/shift-report-backend/pkg/utils"
)

const (
	FORM_FIELD_REPORT       = "report"
	FORM_FIELD_PHOTO_PREFIX = "photo_"

	MSG_MISSING_SUMMARY  = "사장님 요약은 필수입니다."
	MSG_SUBMISSION_ERROR = "제출 중 오류가 발생했습니다."
)

func (h *HttpEndpoints) AddReportsAPI(rg *gin.RouterGroup) {
	reportsGroup := rg.Group("/reports")
	reportsGroup.Use(mw.GetAndValidateReporterJWT(h.tokenSignKey))
	{
		reportsGroup.POST("",
			mw.RequirePayload(),
			mw.LimitPayloadSize(h.maxPayloadSize),
			h.submitReport,
		)
		reportsGroup.GET("", h.getReports)
		reportsGroup.GET("/:id", h.getReport)
	}
}

type SubmitReportReq struct {
	ShiftStage string `json:"shift_stage"`
	reportTypes.FormState
}

type ReportListItem struct {
	reportTypes.Report
	CheckedCount     int                           `json:"checked_count"`
	ChecklistTotal   int                           `json:"checklist_total"`
	ChecklistDetails []reportTypes.ChecklistDetail `json:"checklist_details"`
}

func newReportListItem(r reportTypes.Report) ReportListItem {
	details := reportTypes.ChecklistDetails(r.ShiftStage, r.Checklist)
	checked := 0
	for _, d := range details {
		if d.Checked {
			checked++
		}
	}
	return ReportListItem{
		Report:           r,
		CheckedCount:     checked,
		ChecklistTotal:   len(details),
		ChecklistDetails: details,
	}
}

func (h *HttpEndpoints) submitReport(c *gin.Context) {
	claims, ok := mw.ReporterClaimsFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !utils.IsURLSafe(claims.UID()) {
		slog.Warn("reporter id not usable as storage key", slog.String("uid", claims.UID()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reporter id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		slog.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	reportField := form.Value[FORM_FIELD_REPORT]
	if len(reportField) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report field missing"})
		return
	}
	var req SubmitReportReq
	if err := json.Unmarshal([]byte(reportField[0]), &req); err != nil {
		slog.Warn("failed to parse report field", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report field"})
		return
	}

	stage := reportTypes.ShiftStage(req.ShiftStage)
	if parsed, ok := reportTypes.ParseShiftStage(req.ShiftStage); ok {
		stage = parsed
	}

	photos := make([]submission.Photo, 0, len(form.File))
	for field, headers := range form.File {
		slotStr, ok := strings.CutPrefix(field, FORM_FIELD_PHOTO_PREFIX)
		if !ok {
			continue
		}
		slot, err := strconv.Atoi(slotStr)
		if err != nil || len(headers) != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo field: " + field})
			return
		}
		data, _, err := utils.ReadUploadedFile(headers[0], h.maxPhotoSize, utils.ImageUploadTypes)
		if err != nil {
			slog.Warn("photo rejected", slog.String("field", field), slog.String("error", err.Error()))
			status := http.StatusBadRequest
			if errors.Is(err, utils.ErrFileTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			c.JSON(status, gin.H{"error": "invalid photo: " + field})
			return
		}
		photos = append(photos, submission.Photo{Slot: slot, Data: data})
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].Slot < photos[j].Slot })

	result, err := h.submitter.Submit(c.Request.Context(), submission.Submission{
		Reporter: submission.Reporter{
			UID:   claims.UID(),
			Name:  claims.DisplayName(),
			Email: claims.Email,
		},
		Stage:  stage,
		Form:   req.FormState,
		Photos: photos,
	})
	if err != nil {
		h.writeSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            result.Report.ID.Hex(),
		"droppedPhotos": result.DroppedPhotos,
	})
}

func (h *HttpEndpoints) writeSubmitError(c *gin.Context, err error) {
	var validationErr *reportTypes.ValidationError
	var uploadErr *blobstore.UploadError
	var storeErr *reportsDB.StoreError

	switch {
	case errors.As(err, &validationErr):
		msg := validationErr.Error()
		if validationErr.Code == reportTypes.VALIDATION_MISSING_SUMMARY {
			msg = MSG_MISSING_SUMMARY
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": validationErr.Code})
	case c.Request.Context().Err() != nil:
		// client is gone, nothing was stored
		slog.Info("submission aborted by client", slog.String("error", err.Error()))
		c.Status(499)
	case errors.As(err, &uploadErr), errors.As(err, &storeErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": MSG_SUBMISSION_ERROR})
	default:
		slog.Error("unexpected submission error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": MSG_SUBMISSION_ERROR})
	}
}

func (h *HttpEndpoints) getReports(c *gin.Context) {
	claims, ok := mw.ReporterClaimsFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query, err := apihelpers.ParsePaginatedQueryFromCtx(c, reportsDB.DEFAULT_PAGE_SIZE, reportsDB.MAX_PAGE_SIZE)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scope := reportsDB.ScopeFor(claims.UID(), claims.Email, h.privilegedViewerEmail)
	reports, pagination, err := h.reportsDBConn.GetReports(scope, query.Page, query.Limit)
	if err != nil {
		slog.Error("failed to get reports", slog.String("uid", claims.UID()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get reports"})
		return
	}
	if pagination == nil {
		pagination = &db.PaginationInfos{}
	}

	items := make([]ReportListItem, 0, len(reports))
	for _, r := range reports {
		items = append(items, newReportListItem(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":    items,
		"pagination": pagination,
		"privileged": scope.All,
	})
}

func (h *HttpEndpoints) getReport(c *gin.Context) {
	claims, ok := mw.ReporterClaimsFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	reportID := c.Param("id")
	report, err := h.reportsDBConn.GetReportByID(reportID)
	if err != nil {
		if errors.Is(err, reportsDB.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		slog.Error("failed to get report", slog.String("reportID", reportID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get report"})
		return
	}

	scope := reportsDB.ScopeFor(claims.UID(), claims.Email, h.privilegedViewerEmail)
	if !scope.CanSee(report.ReporterUID) {
		// same answer as for a missing report
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": newReportListItem(report)})
}
