package audit

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/gatehouse/gatehouse/testing"
)

func newTestRouter(repo *stubRepository) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo, nil))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestHandleLogsParsesFilters(t *testing.T) {
	repo := &stubRepository{}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/logs?principal_id=7&result=DENY&from=2026-03-01T09:00:00Z", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.lastFilters.PrincipalID)
	assert.Equal(t, int64(7), *repo.lastFilters.PrincipalID)
	require.NotNil(t, repo.lastFilters.Result)
	assert.Equal(t, ResultDeny, *repo.lastFilters.Result)
	require.NotNil(t, repo.lastFilters.Since)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), *repo.lastFilters.Since)
}

func TestHandleLogsRejectsBadFilters(t *testing.T) {
	router := newTestRouter(&stubRepository{})

	for name, target := range map[string]string{
		"unknown result":   "/logs?result=MAYBE",
		"bad principal id": "/logs?principal_id=abc",
		"bad timestamp":    "/logs?from=yesterday",
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleLogsRendersEntries(t *testing.T) {
	principalID := int64(3)
	origin := "192.0.2.10"
	repo := &stubRepository{entries: []Entry{{
		ID:          41,
		PrincipalID: &principalID,
		Timestamp:   time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Result:      ResultDeny,
		Reason:      "INVALID_PIN",
		Origin:      &origin,
	}, {
		ID:        40,
		Timestamp: time.Date(2026, 3, 1, 9, 29, 0, 0, time.UTC),
		Result:    ResultDeny,
		Reason:    "USER_NOT_FOUND",
	}}}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []entryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(41), got[0].ID)
	require.NotNil(t, got[0].Origin)
	assert.Equal(t, "192.0.2.10", *got[0].Origin)
	// Entries for unknown principals keep a null principal_id.
	assert.Nil(t, got[1].PrincipalID)
}

func TestHandleHistoryRejectsNonNumericID(t *testing.T) {
	router := newTestRouter(&stubRepository{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/not-a-number", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDashboard(t *testing.T) {
	repo := &stubRepository{attempts: 20, denied: 6, pending: 1}
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"attempts_today":20,"denied_today":6,"pending_accounts":1}`, rec.Body.String())
}
