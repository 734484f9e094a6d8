package postgres

import (
	"context"
	"database/sql"
	"time"

	"pintapoa/internal/domain"
)

type locationRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{
		DB:  db,
		now: time.Now,
	}
}

func (r *locationRepository) List(ctx context.Context) ([]*domain.Location, error) {
	query := `
		SELECT id, name, address, date, time, image_url, coordinates, created_at, updated_at
		FROM locations
		ORDER BY date DESC, created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	locations := make([]*domain.Location, 0)
	for rows.Next() {
		l := &domain.Location{}
		var nameNull, addressNull, timeNull, imageNull, coordsNull sql.NullString
		var dateNull, createdNull, updatedNull sql.NullTime
		if err := rows.Scan(&l.ID, &nameNull, &addressNull, &dateNull, &timeNull, &imageNull, &coordsNull, &createdNull, &updatedNull); err != nil {
			return nil, err
		}
		l.Name = nameNull.String
		l.Address = addressNull.String
		l.Time = timeNull.String
		l.ImageURL = imageNull.String
		l.Coordinates = coordsNull.String
		l.CreatedAt = createdNull.Time
		l.UpdatedAt = updatedNull.Time
		if dateNull.Valid {
			l.Date = domain.FormatDate(dateNull.Time)
		} else {
			l.RepairUnreadableDate(r.now())
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Repaired rows come back with NULL dates; re-sort so they land at "now".
	domain.SortLocations(locations)
	return locations, nil
}

func (r *locationRepository) Create(ctx context.Context, l *domain.Location) error {
	date, err := validatedDate(l)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO locations (name, address, date, time, image_url, coordinates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, l.Name, l.Address, date, l.Time, l.ImageURL, l.Coordinates, l.CreatedAt, l.UpdatedAt).Scan(&l.ID)
}

func (r *locationRepository) Update(ctx context.Context, l *domain.Location) error {
	date, err := validatedDate(l)
	if err != nil {
		return err
	}
	query := `
		UPDATE locations
		SET name = $1, address = $2, date = $3, time = $4, image_url = $5, coordinates = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.DB.ExecContext(ctx, query, l.Name, l.Address, date, l.Time, l.ImageURL, l.Coordinates, l.UpdatedAt, l.ID)
	if err != nil {
		if pqCode(err) == pqInvalidTextRepresentation {
			return domain.ErrNotFound
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM locations WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if pqCode(err) == pqInvalidTextRepresentation {
			return domain.ErrNotFound
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// validatedDate re-checks the required fields before any statement is sent.
func validatedDate(l *domain.Location) (time.Time, error) {
	if err := l.Input().Validate(); err != nil {
		return time.Time{}, err
	}
	return domain.ParseDate(l.Date)
}
