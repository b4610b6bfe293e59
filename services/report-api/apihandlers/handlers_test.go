package apihandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/saladoop/shift-report-backend/pkg/blobstore"
	"github.com/saladoop/shift-report-backend/pkg/db"
	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	jwthandling "github.com/saladoop/shift-report-backend/pkg/jwt-handling"
	"github.com/saladoop/shift-report-backend/pkg/submission"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

const (
	testSignKey   = "test-sign-key"
	testBossEmail = "boss@example.com"
)

type fakeReader struct {
	reports   []reportTypes.Report
	lastScope reportsDB.Scope
	lastPage  int64
	lastLimit int64
}

func (f *fakeReader) GetReports(scope reportsDB.Scope, page int64, limit int64) ([]reportTypes.Report, *db.PaginationInfos, error) {
	f.lastScope = scope
	f.lastPage = page
	f.lastLimit = limit
	visible := []reportTypes.Report{}
	for _, r := range f.reports {
		if scope.CanSee(r.ReporterUID) {
			visible = append(visible, r)
		}
	}
	return visible, &db.PaginationInfos{TotalCount: int64(len(visible)), CurrentPage: page, TotalPages: 1, PageSize: limit}, nil
}

func (f *fakeReader) GetReportByID(reportID string) (reportTypes.Report, error) {
	for _, r := range f.reports {
		if r.ID.Hex() == reportID {
			return r, nil
		}
	}
	return reportTypes.Report{}, reportsDB.ErrReportNotFound
}

type fakeSubmitter struct {
	received []submission.Submission
	result   submission.Result
	err      error
}

func (f *fakeSubmitter) Submit(ctx context.Context, sub submission.Submission) (submission.Result, error) {
	f.received = append(f.received, sub)
	return f.result, f.err
}

type fakePhotos struct {
	blobs map[string][]byte
}

func (f *fakePhotos) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if _, err := blobstore.CleanKey(key); err != nil {
		return nil, "", err
	}
	data, ok := f.blobs[key]
	if !ok {
		return nil, "", blobstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(reader ReportReader, submitter ReportSubmitter, photos PhotoOpener) *gin.Engine {
	h := NewHTTPHandler(testSignKey, testBossEmail, reader, submitter, photos, 8<<20, 4<<20)
	router := gin.New()
	router.GET("/", HealthCheckHandle)
	v1 := router.Group("/v1")
	h.AddStagesAPI(v1)
	h.AddReportsAPI(v1)
	h.AddPhotosAPI(v1)
	return router
}

func bearer(t *testing.T, uid string, email string) string {
	t.Helper()
	token, err := jwthandling.GenerateNewReporterToken(time.Hour, uid, email, "Staff "+uid, "", testSignKey)
	require.NoError(t, err)
	return "Bearer " + token
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, reportJSON string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if reportJSON != "" {
		require.NoError(t, w.WriteField(FORM_FIELD_REPORT, reportJSON))
	}
	for field, data := range files {
		part, err := w.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestGetStages(t *testing.T) {
	router := newTestRouter(&fakeReader{}, &fakeSubmitter{}, &fakePhotos{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stages", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stages []reportTypes.StageConfig `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Stages, 3)
	assert.Equal(t, reportTypes.SHIFT_STAGE_OPEN, resp.Stages[0].Stage)
	assert.Equal(t, 2, resp.Stages[2].MaxPhotos)
}

func TestSubmitReport(t *testing.T) {
	reportID := primitive.NewObjectID()

	t.Run("created", func(t *testing.T) {
		submitter := &fakeSubmitter{result: submission.Result{
			Report:        reportTypes.Report{ID: reportID},
			DroppedPhotos: []int{},
		}}
		router := newTestRouter(&fakeReader{}, submitter, &fakePhotos{})

		req := multipartRequest(t,
			`{"shift_stage":"마감","summary_for_boss":"마감 완료","checklist":{"gas_check":true},"busy_level":"바쁨"}`,
			map[string][]byte{"photo_1": pngBytes(t), "photo_0": pngBytes(t)},
		)
		req.Header.Set("Authorization", bearer(t, "uid1", "staff@example.com"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.JSONEq(t, `{"id":"`+reportID.Hex()+`","droppedPhotos":[]}`, w.Body.String())

		require.Len(t, submitter.received, 1)
		sub := submitter.received[0]
		assert.Equal(t, reportTypes.SHIFT_STAGE_CLOSE, sub.Stage)
		assert.Equal(t, "uid1", sub.Reporter.UID)
		assert.Equal(t, "Staff uid1", sub.Reporter.Name)
		assert.Equal(t, "마감 완료", sub.Form.SummaryForBoss)
		assert.Equal(t, reportTypes.BUSY_LEVEL_BUSY, sub.Form.BusyLevel)
		require.Len(t, sub.Photos, 2)
		assert.Equal(t, 0, sub.Photos[0].Slot)
		assert.Equal(t, 1, sub.Photos[1].Slot)
	})

	tests := []struct {
		name       string
		auth       bool
		reportJSON string
		files      map[string][]byte
		submitErr  error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no token",
			auth:       false,
			reportJSON: `{"shift_stage":"open","summary_for_boss":"ok"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing report field",
			auth:       true,
			files:      map[string][]byte{"photo_0": pngBytes(t)},
			wantStatus: http.StatusBadRequest,
			wantBody:   "report field missing",
		},
		{
			name:       "malformed report json",
			auth:       true,
			reportJSON: `{"shift_stage":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid report field",
		},
		{
			name:       "bad photo field",
			auth:       true,
			reportJSON: `{"shift_stage":"open","summary_for_boss":"ok"}`,
			files:      map[string][]byte{"photo_x": pngBytes(t)},
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid photo field",
		},
		{
			name:       "photo is not an image",
			auth:       true,
			reportJSON: `{"shift_stage":"open","summary_for_boss":"ok"}`,
			files:      map[string][]byte{"photo_0": []byte("plain text")},
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid photo",
		},
		{
			name:       "missing summary",
			auth:       true,
			reportJSON: `{"shift_stage":"open","summary_for_boss":" "}`,
			submitErr:  &reportTypes.ValidationError{Code: reportTypes.VALIDATION_MISSING_SUMMARY},
			wantStatus: http.StatusBadRequest,
			wantBody:   MSG_MISSING_SUMMARY,
		},
		{
			name:       "upload failure",
			auth:       true,
			reportJSON: `{"shift_stage":"open","summary_for_boss":"ok"}`,
			submitErr:  &blobstore.UploadError{Key: "reports/uid1/1_0.jpg", Err: errors.New("disk full")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   MSG_SUBMISSION_ERROR,
		},
		{
			name:       "store failure",
			auth:       true,
			reportJSON: `{"shift_stage":"open","summary_for_boss":"ok"}`,
			submitErr:  &reportsDB.StoreError{Op: "insert", Err: errors.New("timeout")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   MSG_SUBMISSION_ERROR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &fakeSubmitter{err: tt.submitErr}
			router := newTestRouter(&fakeReader{}, submitter, &fakePhotos{})

			req := multipartRequest(t, tt.reportJSON, tt.files)
			if tt.auth {
				req.Header.Set("Authorization", bearer(t, "uid1", "staff@example.com"))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			if tt.submitErr == nil {
				assert.Empty(t, submitter.received)
			}
		})
	}
}

func TestGetReportsScopes(t *testing.T) {
	own := reportTypes.Report{ID: primitive.NewObjectID(), ReporterUID: "uid1", ShiftStage: reportTypes.SHIFT_STAGE_CLOSE, Checklist: map[string]bool{"gas_check": true, "lights_door": true}}
	other := reportTypes.Report{ID: primitive.NewObjectID(), ReporterUID: "uid2", ShiftStage: reportTypes.SHIFT_STAGE_OPEN}
	reader := &fakeReader{reports: []reportTypes.Report{own, other}}
	router := newTestRouter(reader, &fakeSubmitter{}, &fakePhotos{})

	type listResp struct {
		Reports []struct {
			ID             string `json:"id"`
			CheckedCount   int    `json:"checked_count"`
			ChecklistTotal int    `json:"checklist_total"`
		} `json:"reports"`
		Pagination db.PaginationInfos `json:"pagination"`
		Privileged bool               `json:"privileged"`
	}

	t.Run("owner sees own reports", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/reports?page=2&limit=500", nil)
		req.Header.Set("Authorization", bearer(t, "uid1", "staff@example.com"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp listResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Reports, 1)
		assert.Equal(t, own.ID.Hex(), resp.Reports[0].ID)
		assert.Equal(t, 2, resp.Reports[0].CheckedCount)
		assert.Equal(t, 8, resp.Reports[0].ChecklistTotal)
		assert.False(t, resp.Privileged)
		assert.Equal(t, reportsDB.OwnerScope("uid1"), reader.lastScope)
		assert.Equal(t, int64(2), reader.lastPage)
		assert.Equal(t, int64(100), reader.lastLimit)
	})

	t.Run("privileged viewer sees all", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
		req.Header.Set("Authorization", bearer(t, "uid9", "Boss@Example.com"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp listResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Reports, 2)
		assert.True(t, resp.Privileged)
	})

	t.Run("bad page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/reports?page=first", nil)
		req.Header.Set("Authorization", bearer(t, "uid1", ""))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetReport(t *testing.T) {
	own := reportTypes.Report{ID: primitive.NewObjectID(), ReporterUID: "uid1", ShiftStage: reportTypes.SHIFT_STAGE_OPEN}
	router := newTestRouter(&fakeReader{reports: []reportTypes.Report{own}}, &fakeSubmitter{}, &fakePhotos{})

	tests := []struct {
		name       string
		id         string
		uid        string
		email      string
		wantStatus int
	}{
		{name: "owner", id: own.ID.Hex(), uid: "uid1", wantStatus: http.StatusOK},
		{name: "privileged", id: own.ID.Hex(), uid: "uid9", email: testBossEmail, wantStatus: http.StatusOK},
		{name: "other reporter", id: own.ID.Hex(), uid: "uid2", wantStatus: http.StatusNotFound},
		{name: "unknown id", id: primitive.NewObjectID().Hex(), uid: "uid1", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/reports/"+tt.id, nil)
			req.Header.Set("Authorization", bearer(t, tt.uid, tt.email))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetPhoto(t *testing.T) {
	photos := &fakePhotos{blobs: map[string][]byte{"reports/uid1/1_0.jpg": []byte("jpeg bytes")}}
	router := newTestRouter(&fakeReader{}, &fakeSubmitter{}, photos)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/photos/reports/uid1/1_0.jpg", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg bytes", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/photos/reports/uid1/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/photos/reports/..%2F..%2Fetc/passwd", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "root:"))
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeReader{}, &fakeSubmitter{}, &fakePhotos{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReportResponsesOmitRelayBookkeeping(t *testing.T) {
	own := reportTypes.Report{
		ID:          primitive.NewObjectID(),
		ReporterUID: "uid1",
		ShiftStage:  reportTypes.SHIFT_STAGE_OPEN,
		Notification: reportTypes.NotificationState{
			LastAttemptAt: 1700000000,
			Slack:         &reportTypes.ChannelOutcome{Status: "failed", Error: "webhook returned 500", At: 1700000000},
		},
	}
	router := newTestRouter(&fakeReader{reports: []reportTypes.Report{own}}, &fakeSubmitter{}, &fakePhotos{})

	tests := []struct {
		name    string
		path    string
		itemKey string
	}{
		{name: "list", path: "/v1/reports", itemKey: "reports"},
		{name: "detail", path: "/v1/reports/" + own.ID.Hex(), itemKey: "report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", bearer(t, "uid1", ""))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)

			assert.NotContains(t, w.Body.String(), "notification")
			assert.NotContains(t, w.Body.String(), "webhook returned 500")

			var resp map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp, tt.itemKey)
		})
	}
}
