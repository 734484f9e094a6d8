package domain

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of a location date.
const DateLayout = "2006-01-02"

// Placeholders used when a stored location cannot be read cleanly.
const (
	fallbackName    = "Sem nome"
	fallbackAddress = "Sem endereço"
	fallbackTime    = "00:00"
)

// Location is one event venue with its date and time window.
// swagger:model Location
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	ImageURL    string    `json:"imageUrl"`
	Coordinates string    `json:"coordinates"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// LocationInput is the create/update payload for a location.
// swagger:model LocationInput
type LocationInput struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Coordinates string `json:"coordinates,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Normalize returns a copy of in with surrounding whitespace removed from every field.
func (in LocationInput) Normalize() LocationInput {
	return LocationInput{
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Coordinates: strings.TrimSpace(in.Coordinates),
	}
}

// Validate checks the required fields. The returned error is a *ValidationError.
func (in LocationInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, fe.Field()+" is required")
		case "datetime":
			fields = append(fields, fe.Field()+" must be formatted as YYYY-MM-DD")
		default:
			fields = append(fields, fe.Field()+" is invalid")
		}
	}
	return &ValidationError{Fields: fields}
}

// NewLocation builds a Location from validated input. ID is set by the repository on create.
func NewLocation(in LocationInput, createdAt, updatedAt time.Time) *Location {
	return &Location{
		Name:        in.Name,
		Address:     in.Address,
		Date:        in.Date,
		Time:        in.Time,
		ImageURL:    in.ImageURL,
		Coordinates: in.Coordinates,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Input returns the mutable fields of l.
func (l *Location) Input() LocationInput {
	return LocationInput{
		Name:        l.Name,
		Address:     l.Address,
		Date:        l.Date,
		Time:        l.Time,
		ImageURL:    l.ImageURL,
		Coordinates: l.Coordinates,
	}
}

// RepairUnreadableDate is applied to a stored record whose date is missing or
// not a timestamp: the date becomes now and empty required text gets a placeholder.
func (l *Location) RepairUnreadableDate(now time.Time) {
	l.Date = FormatDate(now)
	if l.Name == "" {
		l.Name = fallbackName
	}
	if l.Address == "" {
		l.Address = fallbackAddress
	}
	if l.Time == "" {
		l.Time = fallbackTime
	}
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", ErrValidation)
	}
	return t, nil
}

// FormatDate renders t as a YYYY-MM-DD date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// SortLocations orders locations by date descending. Equal dates fall back to
// the most recently created first, then to id.
func SortLocations(locs []*Location) {
	slices.SortStableFunc(locs, func(a, b *Location) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// LocationRepository defines the interface for location storage.
// List returns every stored record in SortLocations order.
type LocationRepository interface {
	List(ctx context.Context) ([]*Location, error)
	Create(ctx context.Context, loc *Location) error
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id string) error
}

// LocationService exposes locations and the event status to the delivery layer.
// Reads degrade to defaults when the store is unreachable; writes return errors.
type LocationService interface {
	GetStatus(ctx context.Context) EventStatus
	SetStatus(ctx context.Context, status EventStatus) error
	ListLocations(ctx context.Context) []*Location
	CreateLocation(ctx context.Context, in LocationInput) (*Location, error)
	UpdateLocation(ctx context.Context, id string, in LocationInput) (*Location, error)
	DeleteLocation(ctx context.Context, id string) error
	GetLatestLocation(ctx context.Context) *Location
	GetPastLocations(ctx context.Context, n int) []*Location
	HasActiveLocation(ctx context.Context) (bool, *Location)
}
