package access

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse/gatehouse/internal/accounts"
	"github.com/gatehouse/gatehouse/internal/audit"
	"github.com/gatehouse/gatehouse/internal/platform/db"
	"github.com/gatehouse/gatehouse/internal/shared"
	"github.com/gatehouse/gatehouse/internal/windows"
)

// TxRepository exposes the reads and writes one evaluation performs. All
// methods run inside the same transaction so a concurrent deactivation or PIN
// rotation is never observed partially.
type TxRepository interface {
	GetPrincipalForUpdate(ctx context.Context, id int64) (*accounts.Principal, error)
	WindowsFor(ctx context.Context, principalID int64) ([]windows.Window, error)
	RecordFailure(ctx context.Context, principalID int64, at time.Time) error
	ResetFailures(ctx context.Context, principalID int64) error
	AppendLog(ctx context.Context, entry audit.Entry) error
}

// Repository provides the transactional boundary for evaluations.
type Repository struct {
	pool  *pgxpool.Pool
	audit *audit.Repository
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, auditRepo *audit.Repository) *Repository {
	return &Repository{pool: pool, audit: auditRepo}
}

// WithTx wraps fn in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, audit: r.audit})
	})
}

type txRepo struct {
	tx    pgx.Tx
	audit *audit.Repository
}

// GetPrincipalForUpdate locks the principal row so concurrent evaluations for
// the same principal serialise on the failure counter.
func (t *txRepo) GetPrincipalForUpdate(ctx context.Context, id int64) (*accounts.Principal, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT id, email, password_hash, status, role, role_expires_at, pin_hash, email_confirmed_at, failed_pin_attempts, last_failed_at, created_at
		 FROM principals WHERE id = $1 FOR UPDATE`, id)
	var p accounts.Principal
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

func (t *txRepo) WindowsFor(ctx context.Context, principalID int64) ([]windows.Window, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, principal_id, start_time, end_time FROM access_windows WHERE principal_id = $1 ORDER BY start_time`,
		principalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []windows.Window
	for rows.Next() {
		var w windows.Window
		if err := rows.Scan(&w.ID, &w.PrincipalID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (t *txRepo) RecordFailure(ctx context.Context, principalID int64, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE principals SET failed_pin_attempts = failed_pin_attempts + 1, last_failed_at = $2 WHERE id = $1`,
		principalID, at,
	)
	return err
}

func (t *txRepo) ResetFailures(ctx context.Context, principalID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE principals SET failed_pin_attempts = 0 WHERE id = $1`, principalID)
	return err
}

func (t *txRepo) AppendLog(ctx context.Context, entry audit.Entry) error {
	return t.audit.AppendTx(ctx, t.tx, entry)
}
