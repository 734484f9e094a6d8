package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pintapoa/internal/domain"
)

// event_status holds a single row.
const statusRowID = 1

type statusRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewStatusRepository(db *sql.DB) domain.StatusRepository {
	return &statusRepository{
		DB:  db,
		now: time.Now,
	}
}

func (r *statusRepository) Get(ctx context.Context) (domain.EventStatus, error) {
	status, err := r.read(ctx)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	query := `
		INSERT INTO event_status (id, status, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, statusRowID, string(domain.DefaultStatus), r.now())
	if err != nil {
		return "", err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Someone else wrote the row between the read and the insert.
		return r.read(ctx)
	}
	return domain.DefaultStatus, nil
}

func (r *statusRepository) read(ctx context.Context) (domain.EventStatus, error) {
	query := `SELECT status FROM event_status WHERE id = $1`
	var status string
	if err := r.DB.QueryRowContext(ctx, query, statusRowID).Scan(&status); err != nil {
		return "", err
	}
	return domain.EventStatus(status), nil
}

func (r *statusRepository) Set(ctx context.Context, status domain.EventStatus, updatedAt time.Time) error {
	query := `
		INSERT INTO event_status (id, status, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, statusRowID, string(status), updatedAt)
	return err
}
