package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pintapoa/internal/adapters/auth"
	"pintapoa/internal/delivery/http/controllers"
	"pintapoa/internal/delivery/http/middleware"
	"pintapoa/internal/domain"
	"pintapoa/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLocations is a minimal in-memory domain.LocationService.
type memLocations struct {
	status domain.EventStatus
	locs   []*domain.Location
	reads  int
}

func (m *memLocations) GetStatus(ctx context.Context) domain.EventStatus {
	m.reads++
	return m.status
}
func (m *memLocations) SetStatus(ctx context.Context, s domain.EventStatus) error {
	m.status = s
	return nil
}
func (m *memLocations) ListLocations(ctx context.Context) []*domain.Location {
	m.reads++
	return m.locs
}
func (m *memLocations) CreateLocation(ctx context.Context, in domain.LocationInput) (*domain.Location, error) {
	loc := domain.NewLocation(in, time.Now(), time.Now())
	loc.ID = "loc-1"
	m.locs = append([]*domain.Location{loc}, m.locs...)
	return loc, nil
}
func (m *memLocations) UpdateLocation(ctx context.Context, id string, in domain.LocationInput) (*domain.Location, error) {
	return nil, domain.ErrNotFound
}
func (m *memLocations) DeleteLocation(ctx context.Context, id string) error {
	return domain.ErrNotFound
}
func (m *memLocations) GetLatestLocation(ctx context.Context) *domain.Location {
	if len(m.locs) == 0 {
		return nil
	}
	return m.locs[0]
}
func (m *memLocations) GetPastLocations(ctx context.Context, n int) []*domain.Location { return m.locs }
func (m *memLocations) HasActiveLocation(ctx context.Context) (bool, *domain.Location) {
	return false, nil
}

// memAdmins is an in-memory domain.AdminRepository.
type memAdmins struct {
	byEmail map[string]*domain.Admin
}

func (m *memAdmins) Create(ctx context.Context, a *domain.Admin) error {
	a.ID = "admin-1"
	m.byEmail[a.Email] = a
	return nil
}

func (m *memAdmins) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	if a, ok := m.byEmail[email]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

type testServer struct {
	handler   http.Handler
	locations *memLocations
}

func newTestServer(t *testing.T, healthErr error) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwt := auth.NewJWTManager("router-test-secret")
	metrics := middleware.NewMetrics()
	authSvc := services.NewAuthService(&memAdmins{byEmail: map[string]*domain.Admin{}}, auth.NewBcryptHasher(4), jwt, jwt, auth.NewMemoryRevoker(), logger, services.AuthOptions{
		FailedSignIns: metrics.FailedSignIns,
	})
	require.NoError(t, authSvc.EnsureAdmin(context.Background(), "admin@pintapoa.org", "secret-pass"))

	locations := &memLocations{status: domain.StatusWaiting}
	pages, err := controllers.NewPagesController(logger, authSvc, locations, false)
	require.NoError(t, err)

	handler := NewRouter(RouterDeps{
		Logger:         logger,
		Verifier:       authSvc,
		Metrics:        metrics,
		AllowedOrigins: []string{"http://localhost:3000"},
		HealthCheck:    func(ctx context.Context) error { return healthErr },
		Locations:      controllers.NewLocationController(logger, locations),
		Status:         controllers.NewStatusController(logger, locations),
		Auth:           controllers.NewAuthController(logger, authSvc, false, metrics.SubscribersOpen),
		Pages:          pages,
	})
	return &testServer{handler: handler, locations: locations}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rr := s.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"admin@pintapoa.org","password":"secret-pass"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestRouter_AdminPageGuarded(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/admin?tab=past", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fadmin%3Ftab%3Dpast", rr.Header().Get("Location"))
	assert.Equal(t, 0, s.locations.reads, "anonymous visitors must not trigger store reads")
}

func TestRouter_AdminPageWithSession(t *testing.T) {
	s := newTestServer(t, nil)
	cookie := s.login(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rr := s.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "admin@pintapoa.org")
}

func TestRouter_PublicAPI(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"status":"waiting"},"error":null}`, rr.Body.String())

	rr = s.do(httptest.NewRequest(http.MethodGet, "/api/locations/latest", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":null,"error":null}`, rr.Body.String())
}

func TestRouter_AdminAPI(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"name":"Parque X","address":"Rua Y","date":"2025-06-01","time":"10:00-12:00"}`

	rr := s.do(httptest.NewRequest(http.MethodPost, "/api/admin/locations", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	cookie := s.login(t)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/locations", bytes.NewBufferString(body))
	req.AddCookie(cookie)
	rr = s.do(req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/locations/missing", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	rr = s.do(req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_LogoutRevokesSession(t *testing.T) {
	s := newTestServer(t, nil)
	cookie := s.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusNoContent, s.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusSeeOther, s.do(req).Code)
}

func TestRouter_Ops(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")

	down := newTestServer(t, errors.New("connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, down.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}
