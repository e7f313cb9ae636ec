package audit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/shared"
)

type stubRepository struct {
	entries []Entry

	lastFilters Filters
	queryCalls  int

	attempts     int64
	denied       int64
	pending      int64
	countCalls   int
	countedSince time.Time
}

func (s *stubRepository) Append(ctx context.Context, entry Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubRepository) Query(ctx context.Context, f Filters) ([]Entry, error) {
	s.queryCalls++
	s.lastFilters = f
	return s.entries, nil
}

func (s *stubRepository) CountAttemptsSince(ctx context.Context, since time.Time) (int64, error) {
	s.countCalls++
	s.countedSince = since
	return s.attempts, nil
}

func (s *stubRepository) CountDeniedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.denied, nil
}

func (s *stubRepository) CountPendingAccounts(ctx context.Context) (int64, error) {
	return s.pending, nil
}

func TestQueryCapsLimit(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo, nil)

	_, err := svc.Query(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Equal(t, 500, repo.lastFilters.Limit)

	_, err = svc.Query(context.Background(), Filters{Limit: 100000})
	require.NoError(t, err)
	assert.Equal(t, 500, repo.lastFilters.Limit)

	_, err = svc.Query(context.Background(), Filters{Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, repo.lastFilters.Limit)
}

func TestQueryRejectsUnknownResultFilter(t *testing.T) {
	svc := NewService(&stubRepository{}, nil)

	bogus := Result("MAYBE")
	_, err := svc.Query(context.Background(), Filters{Result: &bogus})
	// Typed so callers bypassing the handler pre-check still map it to a
	// 400-class response, not an internal error.
	require.ErrorIs(t, err, shared.ErrValidation)

	grant := ResultGrant
	_, err = svc.Query(context.Background(), Filters{Result: &grant})
	require.NoError(t, err)
}

func TestHistoryForFiltersByPrincipal(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo, nil)

	_, err := svc.HistoryFor(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilters.PrincipalID)
	assert.Equal(t, int64(7), *repo.lastFilters.PrincipalID)
}

func TestAppendStampsMissingTimestamp(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.Append(context.Background(), Entry{Result: ResultDeny, Reason: "USER_NOT_FOUND"}))
	require.Len(t, repo.entries, 1)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), repo.entries[0].Timestamp)
}

func TestDashboardCountsSinceUTCMidnight(t *testing.T) {
	repo := &stubRepository{attempts: 12, denied: 4, pending: 2}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 17, 45, 0, 0, time.UTC) }

	counts, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DashboardCounts{AttemptsToday: 12, DeniedToday: 4, PendingAccounts: 2}, counts)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.countedSince)
}

func TestDashboardServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	repo := &stubRepository{attempts: 3, denied: 1, pending: 5}
	svc := NewService(repo, cache)

	first, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countCalls)

	// Second call within the TTL must come from Redis, not the repository.
	second, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.countCalls)

	// Once the cache entry expires the counts are recomputed.
	mr.FastForward(time.Minute)
	repo.attempts = 9
	third, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), third.AttemptsToday)
	assert.Equal(t, 2, repo.countCalls)
}
