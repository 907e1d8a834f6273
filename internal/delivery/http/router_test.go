package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"mentalwell/config"
	deliveryHttp "mentalwell/internal/delivery/http"
	"mentalwell/internal/delivery/http/handler"
	"mentalwell/internal/delivery/http/middleware"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/session"
	"mentalwell/internal/testutil"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/jwt"
	"mentalwell/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const password = "secret1"

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context) (*entity.AnalysisReport, error) {
	return &entity.AnalysisReport{Insights: json.RawMessage(`["estable"]`), GeneratedAt: time.Now().UTC()}, nil
}

type app struct {
	router   http.Handler
	users    *testutil.UserStore
	sessions *testutil.SessionStore
	cfg      config.SessionConfig
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func newApp(t *testing.T) *app {
	t.Helper()
	cfg := config.SessionConfig{
		Secret:       "0123456789abcdef0123456789abcdef",
		CookieName:   config.DefaultCookieName,
		TTL:          time.Hour,
		CookieSecure: true,
		StoreTimeout: 100 * time.Millisecond,
	}
	log := testutil.Logger()
	v := validator.NewValidator()

	users := testutil.NewUserStore()
	sessionStore := testutil.NewSessionStore()
	records := &testutil.RecordStore{}
	audit := &testutil.AuditRecorder{}
	sessions := session.NewController(users, sessionStore, jwt.NewJWTService(cfg), audit, cfg, log)

	registration := usecase.NewRegistrationUsecase(log, users, audit, v)
	profile := usecase.NewProfileUsecase(log, users, audit, sessions)
	admin := usecase.NewAdminUsecase(log, users, records, &testutil.ConfigStore{}, audit, sessions, v)
	recordUsecase := usecase.NewEmotionalRecordUsecase(log, records, users, audit)
	recommendation := usecase.NewRecommendationUsecase(log, records, &testutil.ActivityStore{}, audit)
	assessment := usecase.NewAssessmentUsecase(log, &testutil.AssessmentStore{}, audit)
	analysisUsecase := usecase.NewAnalysisUsecase(log, stubRunner{}, &testutil.AnalysisCache{}, time.Minute)

	handlers := deliveryHttp.Handlers{
		Auth:           handler.NewAuthHandler(registration, sessions, v, log),
		Page:           handler.NewPageHandler(recordUsecase, admin),
		Profile:        handler.NewProfileHandler(profile, sessions, v),
		Record:         handler.NewEmotionalRecordHandler(recordUsecase, v),
		Recommendation: handler.NewRecommendationHandler(recommendation, v),
		Assessment:     handler.NewAssessmentHandler(assessment, v),
		Analysis:       handler.NewAnalysisHandler(analysisUsecase),
		Admin:          handler.NewAdminHandler(admin, v),
	}
	router := deliveryHttp.NewRouter(handlers, sessions,
		middleware.NewPathGate(cfg.CookieName),
		middleware.NewCORSMiddleware([]string{"http://localhost:3000"}),
	).Setup()

	return &app{router: router, users: users, sessions: sessionStore, cfg: cfg}
}

func (a *app) addUser(role entity.Role) *entity.User {
	u := &entity.User{
		Email:        string(role) + "@mentalwell.com",
		PasswordHash: testutil.HashPassword(password),
		FirstName:    "Ana",
		LastName:     "Prueba",
		Role:         role,
	}
	if role == entity.RolePsychologist {
		u.Specialty, u.LicenseNumber = "Clínica", "COL-1"
	}
	return a.users.Add(u)
}

func (a *app) do(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *app) cookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == a.cfg.CookieName {
			return c
		}
	}
	return nil
}

func (a *app) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := a.cookieFrom(rec)
	require.NotNil(t, cookie)
	return cookie
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestRegisterLogsInAndOpensDashboard(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email": "lucia@example.com", "password": password, "confirm_password": password,
		"nombre": "Lucía", "apellido": "Martín", "rol": "paciente", "accept_terms": true,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth struct {
		Redirect string `json:"redirect"`
		User     struct {
			Email string `json:"email"`
			Role  string `json:"rol"`
		} `json:"user"`
	}
	decode(t, rec, &auth)
	assert.Equal(t, entity.PatientDashboardPath, auth.Redirect)
	assert.Equal(t, "paciente", auth.User.Role)

	cookie := a.cookieFrom(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = a.do(http.MethodGet, entity.PatientDashboardPath, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dashboard struct {
		WeeklyStats []json.RawMessage `json:"weekly_stats"`
	}
	decode(t, rec, &dashboard)
	assert.Len(t, dashboard.WeeklyStats, 7)

	rec = a.do(http.MethodGet, entity.LoginPath, nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, entity.PatientDashboardPath, rec.Header().Get("Location"))

	rec = a.do(http.MethodGet, "/api/v1/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var s struct {
		State    string `json:"state"`
		Redirect string `json:"redirect"`
	}
	decode(t, rec, &s)
	assert.Equal(t, "authenticated", s.State)
	assert.Equal(t, entity.PatientDashboardPath, s.Redirect)
}

func TestRegisterValidationError(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email": "lucia@example.com", "password": "123", "confirm_password": "123",
		"nombre": "Lucía", "apellido": "Martín", "rol": "paciente", "accept_terms": true,
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decode(t, rec, nil)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &fields))
	assert.Contains(t, fields, "password")
	assert.Nil(t, a.cookieFrom(rec))
}

func TestAnonymousVisitor(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, entity.AdminDashboardPath, nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, entity.LoginPath, rec.Header().Get("Location"))

	rec = a.do(http.MethodGet, entity.LoginPath, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/auth/session", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var s struct {
		State string `json:"state"`
	}
	decode(t, rec, &s)
	assert.Equal(t, "unauthenticated", s.State)

	rec = a.do(http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	a := newApp(t)
	a.addUser(entity.RolePatient)

	rec := a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "paciente@mentalwell.com", "password": "nope!!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Email o contraseña incorrectos", decode(t, rec, nil).Message)

	rec = a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	a.sessions.Err = errors.New("redis down")
	rec = a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "paciente@mentalwell.com", "password": password}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Nil(t, a.cookieFrom(rec))
}

func TestRoleGuards(t *testing.T) {
	a := newApp(t)
	a.addUser(entity.RolePatient)
	a.addUser(entity.RolePsychologist)
	patientCookie := a.login(t, "paciente@mentalwell.com")
	psychologistCookie := a.login(t, "psicologo@mentalwell.com")

	tests := []struct {
		name     string
		method   string
		path     string
		cookie   *http.Cookie
		code     int
		location string
	}{
		{"patient on admin api", http.MethodGet, "/api/v1/admin/stats", patientCookie, http.StatusForbidden, ""},
		{"patient on analysis", http.MethodGet, "/api/v1/analysis", patientCookie, http.StatusForbidden, ""},
		{"patient on admin page", http.MethodGet, entity.AdminDashboardPath, patientCookie, http.StatusFound, entity.PatientDashboardPath},
		{"psychologist on patient page", http.MethodGet, entity.PatientDashboardPath, psychologistCookie, http.StatusFound, entity.PsychologistDashboardPath},
		{"psychologist on records", http.MethodGet, "/api/v1/records", psychologistCookie, http.StatusForbidden, ""},
		{"psychologist on own page", http.MethodGet, entity.PsychologistDashboardPath, psychologistCookie, http.StatusOK, ""},
		{"psychologist on analysis", http.MethodGet, "/api/v1/analysis", psychologistCookie, http.StatusOK, ""},
		{"psychologist lists patients", http.MethodGet, "/api/v1/psychologist/patients", psychologistCookie, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(tt.method, tt.path, nil, tt.cookie)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestPatientRecordsFlow(t *testing.T) {
	a := newApp(t)
	a.addUser(entity.RolePatient)
	cookie := a.login(t, "paciente@mentalwell.com")

	entry := map[string]interface{}{"mood": 8, "stress": 3, "energy": 7, "sleep": 6, "emociones": []string{"calma"}}
	rec := a.do(http.MethodPost, "/api/v1/records", entry, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/v1/records", entry, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/records", map[string]interface{}{"mood": 11, "stress": 3, "energy": 7, "sleep": 6}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/records", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []json.RawMessage
	decode(t, rec, &records)
	assert.Len(t, records, 1)

	rec = a.do(http.MethodGet, "/api/v1/recommendations?stress=9", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs struct {
		FocusAreas []string `json:"focus_areas"`
	}
	decode(t, rec, &recs)
	assert.Equal(t, []string{"Gestión del Estrés", "Calidad del Sueño"}, recs.FocusAreas)

	rec = a.do(http.MethodGet, "/api/v1/recommendations?stress=abc", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/recommendations/stress-breathing/complete", nil, cookie)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(http.MethodPost, "/api/v1/recommendations/unknown/complete", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesCookie(t *testing.T) {
	a := newApp(t)
	a.addUser(entity.RolePatient)
	cookie := a.login(t, "paciente@mentalwell.com")

	rec := a.do(http.MethodPost, "/api/v1/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, a.sessions.Len())

	// The old pointer is no longer whitelisted.
	rec = a.do(http.MethodGet, "/api/v1/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/auth/logout", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminExportHeaders(t *testing.T) {
	a := newApp(t)
	a.addUser(entity.RoleAdmin)
	a.addUser(entity.RolePatient)
	cookie := a.login(t, "administrador@mentalwell.com")

	rec := a.do(http.MethodGet, "/api/v1/admin/export?format=csv", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Regexp(t, regexp.MustCompile(`^attachment; filename="mentalwell_export_\d{8}_\d{6}\.csv"$`), rec.Header().Get("Content-Disposition"))
	assert.NotContains(t, rec.Body.String(), "$2a$")

	rec = a.do(http.MethodGet, "/api/v1/admin/export", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = a.do(http.MethodGet, "/api/v1/admin/export?format=xml", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/api/v1/admin/audit-logs?limit=-1", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	a := newApp(t)
	admin := a.addUser(entity.RoleAdmin)
	cookie := a.login(t, "administrador@mentalwell.com")

	rec := a.do(http.MethodDelete, "/api/v1/admin/users/"+admin.ID.String(), nil, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodDelete, "/api/v1/admin/users/not-a-uuid", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflightReachesCORS(t *testing.T) {
	a := newApp(t)

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/admin/users", "/api/v1/me"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			a.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			assert.Empty(t, rec.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/me", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
