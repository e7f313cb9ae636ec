package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/gatehouse/gatehouse/internal/shared"
)

const (
	// queryLimit caps ledger reads the same way the admin log view does.
	queryLimit = 500

	dashboardCacheKey = "gatehouse:audit:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

// RepositoryPort defines data access methods for the ledger.
type RepositoryPort interface {
	Append(ctx context.Context, entry Entry) error
	Query(ctx context.Context, f Filters) ([]Entry, error)
	CountAttemptsSince(ctx context.Context, since time.Time) (int64, error)
	CountDeniedSince(ctx context.Context, since time.Time) (int64, error)
	CountPendingAccounts(ctx context.Context) (int64, error)
}

// Service coordinates ledger reads and the dashboard aggregates.
type Service struct {
	repo  RepositoryPort
	cache *redis.Client
	group singleflight.Group
	now   func() time.Time
}

// NewService constructs the audit service. The cache client may be nil; the
// dashboard then recomputes on every call.
func NewService(repo RepositoryPort, cache *redis.Client) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Append writes one ledger entry outside any evaluation transaction. The
// evaluator uses Repository.AppendTx directly; this entry point exists for
// operational corrections, which append rather than edit history.
func (s *Service) Append(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	return s.repo.Append(ctx, entry)
}

// Query returns matching entries, most recent first, capped at 500 rows.
func (s *Service) Query(ctx context.Context, f Filters) ([]Entry, error) {
	if f.Limit <= 0 || f.Limit > queryLimit {
		f.Limit = queryLimit
	}
	if f.Result != nil && !ValidResult(string(*f.Result)) {
		return nil, fmt.Errorf("audit: %w: unknown result filter %q", shared.ErrValidation, *f.Result)
	}
	return s.repo.Query(ctx, f)
}

// HistoryFor returns the attempt history of one principal.
func (s *Service) HistoryFor(ctx context.Context, principalID int64) ([]Entry, error) {
	return s.Query(ctx, Filters{PrincipalID: &principalID})
}

// Dashboard returns the admin aggregates, cached briefly in Redis. Concurrent
// rebuilds collapse through singleflight.
func (s *Service) Dashboard(ctx context.Context) (DashboardCounts, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var counts DashboardCounts
			if json.Unmarshal(raw, &counts) == nil {
				return counts, nil
			}
		}
	}

	value, err, _ := s.group.Do(dashboardCacheKey, func() (any, error) {
		counts, err := s.computeDashboard(ctx)
		if err != nil {
			return DashboardCounts{}, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(counts); err == nil {
				s.cache.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL)
			}
		}
		return counts, nil
	})
	if err != nil {
		return DashboardCounts{}, err
	}
	return value.(DashboardCounts), nil
}

func (s *Service) computeDashboard(ctx context.Context) (DashboardCounts, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	attempts, err := s.repo.CountAttemptsSince(ctx, midnight)
	if err != nil {
		return DashboardCounts{}, err
	}
	denied, err := s.repo.CountDeniedSince(ctx, midnight)
	if err != nil {
		return DashboardCounts{}, err
	}
	pending, err := s.repo.CountPendingAccounts(ctx)
	if err != nil {
		return DashboardCounts{}, err
	}
	return DashboardCounts{
		AttemptsToday:   attempts,
		DeniedToday:     denied,
		PendingAccounts: pending,
	}, nil
}
