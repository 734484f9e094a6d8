package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EventStatus is the promotional lifecycle stage of the next event.
type EventStatus string

const (
	StatusWaiting    EventStatus = "waiting"
	StatusActive     EventStatus = "active"
	StatusSeeYouSoon EventStatus = "see-you-soon"
	StatusEnded      EventStatus = "ended"
)

// DefaultStatus is used when no status has been stored yet.
const DefaultStatus = StatusWaiting

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusSeeYouSoon, StatusEnded:
		return true
	}
	return false
}

// ParseEventStatus returns the status named by s or ErrInvalidStatus.
func ParseEventStatus(s string) (EventStatus, error) {
	status := EventStatus(strings.TrimSpace(s))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// StatusRepository stores the singleton event status.
// Get creates the default record when none exists.
type StatusRepository interface {
	Get(ctx context.Context) (EventStatus, error)
	Set(ctx context.Context, status EventStatus, updatedAt time.Time) error
}
