package windows

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/shared"
)

type mockRepository struct {
	windows []Window
	nextID  int64
}

func (m *mockRepository) Insert(ctx context.Context, principalID int64, start, end time.Time) (int64, error) {
	m.nextID++
	m.windows = append(m.windows, Window{ID: m.nextID, PrincipalID: principalID, Start: start, End: end})
	return m.nextID, nil
}

func (m *mockRepository) ForPrincipal(ctx context.Context, principalID int64) ([]Window, error) {
	var out []Window
	for _, w := range m.windows {
		if w.PrincipalID == principalID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockRepository) Recent(ctx context.Context, limit int) ([]Window, error) {
	if len(m.windows) > limit {
		return m.windows[:limit], nil
	}
	return m.windows, nil
}

func TestAddRejectsInvalidInterval(t *testing.T) {
	svc := NewService(&mockRepository{})
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.Add(context.Background(), 1, start, start)
	assert.ErrorIs(t, err, shared.ErrInvalidInterval)

	_, err = svc.Add(context.Background(), 1, start, start.Add(-time.Minute))
	assert.ErrorIs(t, err, shared.ErrInvalidInterval)
}

func TestAddNormalisesToUTC(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)
	zone := time.FixedZone("UTC+7", 7*3600)
	start := time.Date(2026, 3, 1, 16, 0, 0, 0, zone)

	w, err := svc.Add(context.Background(), 1, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, w.Start.Location())
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), w.Start)
}

func TestContainsAnyWithNoWindowsIsUnrestricted(t *testing.T) {
	svc := NewService(&mockRepository{})

	ok, err := svc.ContainsAny(context.Background(), 42, time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContainsAnyWithWindows(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := svc.Add(context.Background(), 1, start, start.Add(time.Hour))
	require.NoError(t, err)

	ok, err := svc.ContainsAny(context.Background(), 1, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ContainsAny(context.Background(), 1, start.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}
