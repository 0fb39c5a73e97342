package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appointmentHandler "github.com/jwalitptl/dental-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/dental-api/internal/handler/auth"
	clinicPatientHandler "github.com/jwalitptl/dental-api/internal/handler/clinicpatient"
	patientHandler "github.com/jwalitptl/dental-api/internal/handler/patient"
	userHandler "github.com/jwalitptl/dental-api/internal/handler/user"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/realtime"
	"github.com/jwalitptl/dental-api/internal/repository/memory"
	"github.com/jwalitptl/dental-api/internal/router"
	appointmentService "github.com/jwalitptl/dental-api/internal/service/appointment"
	authService "github.com/jwalitptl/dental-api/internal/service/auth"
	"github.com/jwalitptl/dental-api/internal/service/bootstrap"
	clinicPatientService "github.com/jwalitptl/dental-api/internal/service/clinicpatient"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	patientService "github.com/jwalitptl/dental-api/internal/service/patient"
	userService "github.com/jwalitptl/dental-api/internal/service/user"
	"github.com/jwalitptl/dental-api/pkg/auth"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const (
	adminPhone    = "+77770000000"
	adminPassword = "admin123"
)

type TestResponse struct {
	Code    int
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if val, ok := r.Data[key].(string); ok {
		return val
	}
	return ""
}

func (r TestResponse) GetID() int64 {
	if val, ok := r.Data["id"].(float64); ok {
		return int64(val)
	}
	return 0
}

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T, cfg router.RouterConfig) *testServer {
	t.Helper()
	require.NoError(t, middleware.RegisterValidators())

	store := memory.NewStore()
	repos := store.Repositories()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	jwtSvc, err := auth.NewJWTService(auth.Config{SecretKey: "router-test", TokenExpiry: time.Hour})
	require.NoError(t, err)

	_, err = bootstrap.NewService(repos.Clinics, repos.Users, hasher).Run(context.Background(), bootstrap.Options{
		Phone:    adminPhone,
		Password: adminPassword,
	})
	require.NoError(t, err)

	hub := realtime.NewHub(nil)
	authSvc := authService.NewService(repos.Users, jwtSvc, hasher, 0)
	clinicPatientSvc := clinicPatientService.NewService(repos.ClinicPatients, repos.Patients)
	notifier := notification.NewService(hub, repos.Outbox)

	handlers := router.Handlers{
		Auth:           authHandler.NewHandler(authSvc),
		Users:          userHandler.NewHandler(userService.NewService(repos.Users, repos.Clinics, hasher, authSvc)),
		Patients:       patientHandler.NewHandler(patientService.NewService(repos.Patients)),
		ClinicPatients: clinicPatientHandler.NewHandler(clinicPatientSvc),
		Appointments: appointmentHandler.NewHandler(appointmentService.NewService(
			repos.Appointments, repos.Patients, repos.Users, repos.Tx, clinicPatientSvc, notifier,
		)),
		WebSocket: realtime.NewHandler(hub),
	}

	cfg.Mode = gin.TestMode
	r := router.NewRouter(authSvc, handlers, nil, cfg)
	r.Setup()
	return &testServer{engine: r.Engine(), store: store}
}

func (s *testServer) makeRequest(t *testing.T, method, path string, body interface{}, token string) TestResponse {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	resp := TestResponse{Code: w.Code}
	if w.Body.Len() > 0 {
		// list endpoints return arrays, leaving Data empty
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return resp
}

func (s *testServer) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, phone, password string) string {
	t.Helper()
	w := s.postForm(t, "/api/v1/auth/login", url.Values{
		"grant_type": {"password"},
		"username":   {phone},
		"password":   {password},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token model.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func TestAppointmentFlow(t *testing.T) {
	s := newTestServer(t, router.RouterConfig{})
	adminToken := s.login(t, adminPhone, adminPassword)

	me := s.makeRequest(t, http.MethodGet, "/api/v1/auth/me", nil, adminToken)
	require.True(t, me.IsSuccess())
	assert.Equal(t, "admin", me.GetString("role"))
	clinicID := me.Data["clinic_id"]

	doctor := s.makeRequest(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"full_name": "Dr. Ivanov",
		"phone":     "+77771234568",
		"password":  "doctor123",
		"role":      "doctor",
		"clinic_id": clinicID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, doctor.Code, doctor.Message)
	assert.Empty(t, doctor.GetString("password_hash"))

	patient := s.makeRequest(t, http.MethodPost, "/api/v1/patients", map[string]interface{}{
		"full_name":  "Aigul Nurlanova",
		"phone":      "+77771234580",
		"iin":        "900515400123",
		"birth_date": "1990-05-15",
	}, adminToken)
	require.Equal(t, http.StatusCreated, patient.Code, patient.Message)
	assert.Equal(t, "1990-05-15", patient.GetString("birth_date"))

	dup := s.makeRequest(t, http.MethodPost, "/api/v1/patients", map[string]interface{}{
		"full_name":  "Someone",
		"phone":      "+77771234599",
		"iin":        "900515400123",
		"birth_date": "1990-05-15",
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Equal(t, "Patient with this IIN already exists", dup.Message)

	appt := s.makeRequest(t, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"patient_id":           patient.GetID(),
		"doctor_id":            doctor.GetID(),
		"appointment_datetime": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"service_type":         "Consultation",
	}, adminToken)
	require.Equal(t, http.StatusCreated, appt.Code, appt.Message)
	assert.Equal(t, "scheduled", appt.GetString("status"))

	// the appointment links the patient to the doctor's clinic
	doctorToken := s.login(t, "+77771234568", "doctor123")
	search := s.makeRequest(t, http.MethodGet, "/api/v1/clinic-patients?search=aigul", nil, doctorToken)
	require.Equal(t, http.StatusOK, search.Code, search.Message)
	assert.Equal(t, float64(1), search.Data["total"])

	events := s.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "appointment.created", events[0].EventType)
}

func TestLogin_PasswordGrant(t *testing.T) {
	s := newTestServer(t, router.RouterConfig{})

	w := s.postForm(t, "/api/v1/auth/login", url.Values{
		"grant_type": {"password"},
		"username":   {adminPhone},
		"password":   {adminPassword},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotContains(t, body, "data")
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, adminPhone, user["phone"])

	token, _ := body["access_token"].(string)
	me := s.makeRequest(t, http.MethodGet, "/api/v1/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, adminPhone, me.GetString("phone"))

	w = s.postForm(t, "/api/v1/auth/login", url.Values{
		"grant_type": {"client_credentials"},
		"username":   {adminPhone},
		"password":   {adminPassword},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postForm(t, "/api/v1/auth/login", url.Values{"username": {adminPhone}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t, router.RouterConfig{})

	resp := s.makeRequest(t, http.MethodGet, "/api/v1/patients", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "error", resp.Status)

	resp = s.makeRequest(t, http.MethodGet, "/api/v1/patients", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": adminPhone,
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Incorrect phone or password", resp.Message)

	adminToken := s.login(t, adminPhone, adminPassword)
	created := s.makeRequest(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"full_name": "Registrar",
		"phone":     "+77771234570",
		"password":  "registrar1",
		"role":      "registrar",
	}, adminToken)
	require.Equal(t, http.StatusCreated, created.Code, created.Message)

	registrarToken := s.login(t, "+77771234570", "registrar1")
	resp = s.makeRequest(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"full_name": "Nope",
		"phone":     "+77771234571",
		"password":  "secret1",
		"role":      "admin",
	}, registrarToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "Not enough permissions", resp.Message)
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, router.RouterConfig{})
	token := s.login(t, adminPhone, adminPassword)

	resp := s.makeRequest(t, http.MethodPost, "/api/v1/patients", map[string]interface{}{
		"full_name":  "Bad",
		"phone":      "abc",
		"iin":        "123",
		"birth_date": "1990-01-01",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Message, "iin must be exactly 12 digits")

	resp = s.makeRequest(t, http.MethodGet, "/api/v1/patients/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.makeRequest(t, http.MethodGet, "/api/v1/patients/999", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Patient not found", resp.Message)
}

func TestLoginRateLimit(t *testing.T) {
	limit := middleware.PerMinute(2)
	s := newTestServer(t, router.RouterConfig{LoginRateLimit: &limit})

	body := map[string]string{"username": adminPhone, "password": "wrong-password"}
	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", body, "").Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
