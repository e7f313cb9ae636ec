package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse/gatehouse/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for principals.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const principalColumns = `id, email, password_hash, status, role, role_expires_at, pin_hash, email_confirmed_at, failed_pin_attempts, last_failed_at, created_at`

func scanPrincipal(row pgx.Row) (*Principal, error) {
	var p Principal
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.Status,
		&p.Role,
		&p.RoleExpiresAt,
		&p.PINHash,
		&p.EmailConfirmedAt,
		&p.FailedPINAttempts,
		&p.LastFailedAt,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a freshly registered principal and returns its id.
func (r *Repository) Create(ctx context.Context, email, passwordHash string, createdAt time.Time) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO principals (email, password_hash, status, role, failed_pin_attempts, created_at)
		 VALUES ($1, $2, $3, $4, 0, $5) RETURNING id`,
		email, passwordHash, StatusInactive, RoleUser, createdAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, shared.ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

// GetByID fetches a principal by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+` FROM principals WHERE id = $1`, id)
	return scanPrincipal(row)
}

// GetByEmail fetches a principal by case-folded email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+` FROM principals WHERE email = $1`, email)
	return scanPrincipal(row)
}

// SetEmailConfirmed stamps the confirmation timestamp.
func (r *Repository) SetEmailConfirmed(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE principals SET email_confirmed_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Activate flips the account to ACTIVE and stores the freshly issued PIN hash.
func (r *Repository) Activate(ctx context.Context, id int64, pinHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE principals SET status = $2, pin_hash = $3 WHERE id = $1`,
		id, StatusActive, pinHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetStatus updates the lifecycle status. The PIN hash is deliberately left in
// place on deactivation; the lifecycle gate denies regardless.
func (r *Repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE principals SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetRole updates the role and its optional expiry.
func (r *Repository) SetRole(ctx context.Context, id int64, role Role, expiresAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE principals SET role = $2, role_expires_at = $3 WHERE id = $1`,
		id, role, expiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListPINHashes returns every stored PIN hash, used by the issuance
// uniqueness scan.
func (r *Repository) ListPINHashes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT pin_hash FROM principals WHERE pin_hash IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// List returns all principals, newest first.
func (r *Repository) List(ctx context.Context) ([]Principal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+principalColumns+` FROM principals ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
