package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the attempt ledger.
// The table is append-only; no update or delete statements exist here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func appendEntry(ctx context.Context, db execer, entry Entry) error {
	_, err := db.Exec(ctx,
		`INSERT INTO access_log (principal_id, attempted_at, result, reason, origin) VALUES ($1, $2, $3, $4, $5)`,
		entry.PrincipalID, entry.Timestamp, entry.Result, entry.Reason, entry.Origin,
	)
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}

// Append inserts one ledger entry using the pool.
func (r *Repository) Append(ctx context.Context, entry Entry) error {
	return appendEntry(ctx, r.pool, entry)
}

// AppendTx inserts one ledger entry inside an existing transaction.
func (r *Repository) AppendTx(ctx context.Context, tx pgx.Tx, entry Entry) error {
	return appendEntry(ctx, tx, entry)
}

// Query returns entries matching the filters, most recent first.
func (r *Repository) Query(ctx context.Context, f Filters) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if f.PrincipalID != nil {
		args = append(args, *f.PrincipalID)
		clauses = append(clauses, fmt.Sprintf("principal_id = $%d", len(args)))
	}
	if f.Result != nil {
		args = append(args, *f.Result)
		clauses = append(clauses, fmt.Sprintf("result = $%d", len(args)))
	}
	if f.Since != nil {
		args = append(args, *f.Since)
		clauses = append(clauses, fmt.Sprintf("attempted_at >= $%d", len(args)))
	}
	query := `SELECT id, principal_id, attempted_at, result, reason, origin FROM access_log`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY attempted_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PrincipalID, &e.Timestamp, &e.Result, &e.Reason, &e.Origin); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountAttemptsSince counts ledger entries at or after the given instant.
func (r *Repository) CountAttemptsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM access_log WHERE attempted_at >= $1`, since).Scan(&n)
	return n, err
}

// CountDeniedSince counts DENY entries at or after the given instant.
func (r *Repository) CountDeniedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM access_log WHERE attempted_at >= $1 AND result = $2`, since, ResultDeny,
	).Scan(&n)
	return n, err
}

// CountPendingAccounts counts principals awaiting approval.
func (r *Repository) CountPendingAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM principals WHERE status = 'INACTIVE'`).Scan(&n)
	return n, err
}
