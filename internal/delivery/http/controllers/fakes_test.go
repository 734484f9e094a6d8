package controllers

import (
	"context"
	"io"
	"log/slog"
	"time"

	"pintapoa/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeLocationService implements domain.LocationService for handler tests.
type fakeLocationService struct {
	status     domain.EventStatus
	locations  []*domain.Location
	setErr     error
	createErr  error
	updateErr  error
	deleteErr  error
	lastInput  domain.LocationInput
	lastID     string
	lastLimit  int
	lastStatus domain.EventStatus
}

func (f *fakeLocationService) GetStatus(ctx context.Context) domain.EventStatus {
	if f.status == "" {
		return domain.DefaultStatus
	}
	return f.status
}

func (f *fakeLocationService) SetStatus(ctx context.Context, status domain.EventStatus) error {
	f.lastStatus = status
	if f.setErr != nil {
		return f.setErr
	}
	f.status = status
	return nil
}

func (f *fakeLocationService) ListLocations(ctx context.Context) []*domain.Location {
	if f.locations == nil {
		return []*domain.Location{}
	}
	return f.locations
}

func (f *fakeLocationService) CreateLocation(ctx context.Context, in domain.LocationInput) (*domain.Location, error) {
	f.lastInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	loc := domain.NewLocation(in.Normalize(), time.Now(), time.Now())
	loc.ID = "loc-new"
	return loc, nil
}

func (f *fakeLocationService) UpdateLocation(ctx context.Context, id string, in domain.LocationInput) (*domain.Location, error) {
	f.lastID, f.lastInput = id, in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	loc := domain.NewLocation(in.Normalize(), time.Time{}, time.Now())
	loc.ID = id
	return loc, nil
}

func (f *fakeLocationService) DeleteLocation(ctx context.Context, id string) error {
	f.lastID = id
	return f.deleteErr
}

func (f *fakeLocationService) GetLatestLocation(ctx context.Context) *domain.Location {
	if len(f.locations) == 0 {
		return nil
	}
	return f.locations[0]
}

func (f *fakeLocationService) GetPastLocations(ctx context.Context, n int) []*domain.Location {
	f.lastLimit = n
	return f.ListLocations(ctx)
}

func (f *fakeLocationService) HasActiveLocation(ctx context.Context) (bool, *domain.Location) {
	latest := f.GetLatestLocation(ctx)
	if f.GetStatus(ctx) != domain.StatusActive || latest == nil {
		return false, nil
	}
	return true, latest
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	validToken   string
	identity     *domain.Identity
	signInErr    error
	signOutErr   error
	signedOut    []string
	events       []domain.AuthEvent
	lastEmail    string
	lastPassword string
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{
		validToken: "good-token",
		identity:   &domain.Identity{UID: "admin-1", Email: "admin@pintapoa.org", DisplayName: "Admin"},
	}
}

func (f *fakeAuthService) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" || token != f.validToken {
		return nil, domain.ErrInvalidToken
	}
	return f.identity, nil
}

func (f *fakeAuthService) SignIn(ctx context.Context, email, password string) (*domain.Identity, *domain.Session, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.signInErr != nil {
		return nil, nil, f.signInErr
	}
	return f.identity, &domain.Session{Token: f.validToken, TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuthService) SignOut(ctx context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return f.signOutErr
}

func (f *fakeAuthService) Subscribe(ctx context.Context, token string) (<-chan domain.AuthEvent, func()) {
	ch := make(chan domain.AuthEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, func() {}
}

func (f *fakeAuthService) EnsureAdmin(ctx context.Context, email, password string) error { return nil }

// fakeGauge implements Gauge.
type fakeGauge struct{ inc, dec int }

func (g *fakeGauge) Inc() { g.inc++ }
func (g *fakeGauge) Dec() { g.dec++ }

func sampleLocations() []*domain.Location {
	return []*domain.Location{
		{ID: "loc-2", Name: "Parque X", Address: "Rua Y", Date: "2025-06-01", Time: "10:00-12:00"},
		{ID: "loc-1", Name: "Praça Z", Address: "Av. W", Date: "2025-05-15", Time: "14:00 - 17:00"},
	}
}
