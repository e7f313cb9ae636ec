package windows

import (
	"context"
	"time"

	"github.com/gatehouse/gatehouse/internal/shared"
)

const recentLimit = 200

// RepositoryPort defines data access methods for access windows.
type RepositoryPort interface {
	Insert(ctx context.Context, principalID int64, start, end time.Time) (int64, error)
	ForPrincipal(ctx context.Context, principalID int64) ([]Window, error)
	Recent(ctx context.Context, limit int) ([]Window, error)
}

// Service owns the access window registry.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the registry service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Add stores a window after validating the interval. Timestamps are
// normalised to UTC; overlap with existing windows is not checked.
func (s *Service) Add(ctx context.Context, principalID int64, start, end time.Time) (Window, error) {
	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return Window{}, shared.ErrInvalidInterval
	}
	id, err := s.repo.Insert(ctx, principalID, start, end)
	if err != nil {
		return Window{}, err
	}
	return Window{ID: id, PrincipalID: principalID, Start: start, End: end}, nil
}

// ScheduleFor builds the effective schedule for a principal.
func (s *Service) ScheduleFor(ctx context.Context, principalID int64) (Schedule, error) {
	ws, err := s.repo.ForPrincipal(ctx, principalID)
	if err != nil {
		return Schedule{}, err
	}
	return RestrictedTo(ws), nil
}

// ContainsAny reports whether any configured window for the principal
// contains now. A principal with no windows always passes.
func (s *Service) ContainsAny(ctx context.Context, principalID int64, now time.Time) (bool, error) {
	schedule, err := s.ScheduleFor(ctx, principalID)
	if err != nil {
		return false, err
	}
	return schedule.Permits(now.UTC()), nil
}

// Recent lists the most recently starting windows for the admin surface.
func (s *Service) Recent(ctx context.Context) ([]Window, error) {
	return s.repo.Recent(ctx, recentLimit)
}
