package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwthandling "github.com/saladoop/shift-report-backend/pkg/jwt-handling"
	"github.com/saladoop/shift-report-backend/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func TestGetAndValidateReporterJWT(t *testing.T) {
	secret := "sign-key"
	router := gin.New()
	router.GET("/me", GetAndValidateReporterJWT(secret), func(c *gin.Context) {
		claims, ok := ReporterClaimsFromCtx(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": claims.UID()})
	})

	valid, err := jwthandling.GenerateNewReporterToken(time.Hour, "uid-1", "staff@example.com", "Staff", "", secret)
	require.NoError(t, err)
	foreign, err := jwthandling.GenerateNewReporterToken(time.Hour, "uid-1", "", "", "", "other-key")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantBody: "No Authorization header found"},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantBody: "No token found"},
		{name: "wrong key", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized, wantBody: "error during token validation"},
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: `"uid":"uid-1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRateLimit(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
	limiter := ratelimit.NewMemoryLimiterWithClock(5, time.Minute, clock.Now)

	router := gin.New()
	router.POST("/v1/relay/send-report", RateLimit(limiter), okHandler)

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/relay/send-report", strings.NewReader("{}"))
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code, "request %d", i+1)
	}
	w := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests. Please try again later."}`, w.Body.String())

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code, "other clients are unaffected")

	clock.Advance(61 * time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("connection reset")
}

func TestRateLimitFailsOpen(t *testing.T) {
	router := gin.New()
	router.POST("/", RateLimit(brokenLimiter{}), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHasValidAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		validKeys  []string
		key        string
		wantStatus int
	}{
		{name: "open without keys", validKeys: nil, key: "", wantStatus: http.StatusOK},
		{name: "missing key", validKeys: []string{"k1"}, key: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", validKeys: []string{"k1"}, key: "k2", wantStatus: http.StatusUnauthorized},
		{name: "valid key", validKeys: []string{"k0", "k1"}, key: "k1", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", HasValidAPIKey(tt.validKeys), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequirePayloadAndLimit(t *testing.T) {
	router := gin.New()
	router.POST("/", RequirePayload(), LimitPayloadSize(8), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(HeaderRequestID))
}
