package httpgin

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kdanyliuk/studyhall/internal/service/attendance"
	"github.com/kdanyliuk/studyhall/internal/service/members"
	"github.com/kdanyliuk/studyhall/internal/service/seating"
	"github.com/kdanyliuk/studyhall/internal/service/subscriptions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"duplicate id", members.ErrDuplicateID, http.StatusConflict, "identifier already registered"},
		{"duplicate email", members.ErrDuplicateEmail, http.StatusConflict, "email already registered"},
		{"member not found", subscriptions.ErrMemberNotFound, http.StatusNotFound, "member not found"},
		{"invalid term", subscriptions.ErrInvalidTerm, http.StatusBadRequest, "invalid subscription term"},
		{"zone not found", seating.ErrZoneNotFound, http.StatusNotFound, "zone not found"},
		{"ineligible", attendance.ErrIneligibleMember, http.StatusForbidden, "no active subscription"},
		{"already checked in", attendance.ErrAlreadyCheckedIn, http.StatusConflict, "already checked in"},
		{"no seat", attendance.ErrNoSeatAvailable, http.StatusConflict, "no seats available"},
		{"not checked in", attendance.ErrNotCheckedIn, http.StatusConflict, "not checked in"},
		{"unmapped", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondErr(c, tt.err)

			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRespondErrWrappedSentinel(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondErr(c, errors.Join(errors.New("check-in"), attendance.ErrNoSeatAvailable))

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondErrHidesStorageDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondErr(c, errors.New(`ERROR: relation "seats" does not exist (SQLSTATE 42P01)`))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "SQLSTATE")
	require.NotContains(t, w.Body.String(), "seats")
}

func TestWriteJSONWithCacheETag(t *testing.T) {
	handler := func(c *gin.Context) {
		writeJSONWithCache(c, http.StatusOK, gin.H{"total": 3}, "public, max-age=15", true)
	}

	r := gin.New()
	r.GET("/x", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)
	require.True(t, len(tag) > 2 && tag[:2] == "W/")
	require.Equal(t, "public, max-age=15", w.Header().Get("Cache-Control"))

	// Replaying with the tag gets a 304 with no body.
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	req2.Header.Set("If-None-Match", tag)
	r.ServeHTTP(w2, req2)

	require.Equal(t, http.StatusNotModified, w2.Code)
	require.Zero(t, w2.Body.Len())
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// A caller-provided id is echoed back unchanged.
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w2, req)
	require.Equal(t, "req-42", w2.Header().Get("X-Request-ID"))
}

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 20, parseIntDefault("", 20))
	require.Equal(t, 5, parseIntDefault("5", 20))
	require.Equal(t, 20, parseIntDefault("abc", 20))
}

func TestIsRateLimitedErr(t *testing.T) {
	require.True(t, isRateLimitedErr(errors.New("rate limited: retry later")))
	require.False(t, isRateLimitedErr(errors.New("timeout")))
	require.False(t, isRateLimitedErr(nil))
}
