package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-api/internal/handler"
	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	users map[string]*model.User
}

func (a stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := a.users[token]; ok {
		return u, nil
	}
	return nil, apperrors.Unauthorized("Could not validate credentials", nil)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newAuthEngine(roles ...string) *gin.Engine {
	auth := stubAuth{users: map[string]*model.User{
		"admin-token":  {Base: model.Base{ID: 1}, Role: model.RoleAdmin, IsActive: true},
		"doctor-token": {Base: model.Base{ID: 2}, Role: model.RoleDoctor, IsActive: true},
	}}
	r := gin.New()
	r.GET("/protected", Authenticate(auth), RequireRoles(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.CurrentUser(c).ID))
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	r := newAuthEngine(model.RoleAdmin, model.RoleDoctor)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic admin-token", http.StatusUnauthorized},
		{"empty token", "Bearer  ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer doctor-token", http.StatusOK},
		{"lowercase scheme", "bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				assert.Equal(t, "error", decode(t, w).Status)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := newAuthEngine(model.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer doctor-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not enough permissions", decode(t, w).Message)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other clients have their own bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPerMinute(t *testing.T) {
	cfg := PerMinute(5)
	assert.Equal(t, 5, cfg.Burst)
	assert.Equal(t, rate.Every(12*time.Second), cfg.Rate)

	assert.Equal(t, 1, PerMinute(0).Burst)
}

func TestValidPhone(t *testing.T) {
	for _, ok := range []string{"+77771234567", "87771234567", "+7 (777) 123-45-67"} {
		assert.True(t, ValidPhone(ok), ok)
	}
	for _, bad := range []string{"", "12345", "+7777abc4567", "+777712345678901234567", "-7771234567"} {
		assert.False(t, ValidPhone(bad), bad)
	}
}

func TestValidIIN(t *testing.T) {
	assert.True(t, ValidIIN("900515400123"))
	assert.False(t, ValidIIN("9005154001"))
	assert.False(t, ValidIIN("9005154001234"))
	assert.False(t, ValidIIN("90051540012x"))
}

func TestRegisterValidators_BindingMessages(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	r := gin.New()
	r.POST("/patients", func(c *gin.Context) {
		var req model.CreatePatientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handler.RespondBindError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	body := `{"full_name":"A","phone":"123","iin":"1","birth_date":"1990-01-01"}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	msg := decode(t, w).Message
	assert.Contains(t, msg, "phone must be a valid phone number")
	assert.Contains(t, msg, "iin must be exactly 12 digits")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w).Message)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
}
