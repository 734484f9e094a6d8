package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pintapoa/internal/domain"
)

type locationService struct {
	locationRepo   domain.LocationRepository
	statusRepo     domain.StatusRepository
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewLocationService creates a LocationService over the given repositories.
// A zero timeout leaves the caller's context untouched.
func NewLocationService(locationRepo domain.LocationRepository, statusRepo domain.StatusRepository, logger *slog.Logger, timeout time.Duration) domain.LocationService {
	return &locationService{
		locationRepo:   locationRepo,
		statusRepo:     statusRepo,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *locationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

func (s *locationService) GetStatus(ctx context.Context) domain.EventStatus {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	status, err := s.statusRepo.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "reading event status failed, using default", "err", err)
		return domain.DefaultStatus
	}
	if !status.Valid() {
		s.logger.WarnContext(ctx, "stored event status is unknown, using default", "status", string(status))
		return domain.DefaultStatus
	}
	return status
}

func (s *locationService) SetStatus(ctx context.Context, status domain.EventStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(status))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.statusRepo.Set(ctx, status, s.now()); err != nil {
		return unavailable("update event status", err)
	}
	return nil
}

func (s *locationService) ListLocations(ctx context.Context) []*domain.Location {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "listing locations failed, returning empty list", "err", err)
		return []*domain.Location{}
	}
	if locations == nil {
		locations = []*domain.Location{}
	}
	return locations
}

func (s *locationService) CreateLocation(ctx context.Context, in domain.LocationInput) (*domain.Location, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	location := domain.NewLocation(in, now, now)
	if err := s.locationRepo.Create(ctx, location); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, unavailable("create location", err)
	}
	return location, nil
}

func (s *locationService) UpdateLocation(ctx context.Context, id string, in domain.LocationInput) (*domain.Location, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	location := domain.NewLocation(in, time.Time{}, s.now())
	location.ID = id
	if err := s.locationRepo.Update(ctx, location); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, unavailable("update location", err)
	}
	return location, nil
}

func (s *locationService) DeleteLocation(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrNotFound
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.locationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return unavailable("delete location", err)
	}
	return nil
}

func (s *locationService) GetLatestLocation(ctx context.Context) *domain.Location {
	locations := s.ListLocations(ctx)
	if len(locations) == 0 {
		return nil
	}
	return locations[0]
}

// GetPastLocations returns up to n of the most recent locations. While the
// event is active the latest location is being promoted, so it is left out.
func (s *locationService) GetPastLocations(ctx context.Context, n int) []*domain.Location {
	if n <= 0 {
		return []*domain.Location{}
	}
	locations := s.ListLocations(ctx)
	if len(locations) == 0 {
		return locations
	}
	if s.GetStatus(ctx) == domain.StatusActive {
		locations = locations[1:]
	}
	if len(locations) > n {
		locations = locations[:n]
	}
	return locations
}

func (s *locationService) HasActiveLocation(ctx context.Context) (bool, *domain.Location) {
	if s.GetStatus(ctx) != domain.StatusActive {
		return false, nil
	}
	latest := s.GetLatestLocation(ctx)
	return latest != nil, latest
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}
