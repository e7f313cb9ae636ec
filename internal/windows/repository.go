package windows

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for access windows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new window and returns its id.
func (r *Repository) Insert(ctx context.Context, principalID int64, start, end time.Time) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO access_windows (principal_id, start_time, end_time) VALUES ($1, $2, $3) RETURNING id`,
		principalID, start, end,
	).Scan(&id)
	return id, err
}

// ForPrincipal returns all windows configured for a principal.
func (r *Repository) ForPrincipal(ctx context.Context, principalID int64) ([]Window, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, principal_id, start_time, end_time FROM access_windows WHERE principal_id = $1 ORDER BY start_time`,
		principalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.PrincipalID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Recent returns the most recently starting windows across all principals.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Window, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, principal_id, start_time, end_time FROM access_windows ORDER BY start_time DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.PrincipalID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
