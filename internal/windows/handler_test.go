package windows

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/gatehouse/gatehouse/testing"
)

func newTestRouter(repo *mockRepository) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, NewService(repo)).MountRoutes(r)
	return r
}

func TestHandleAddWindow(t *testing.T) {
	repo := &mockRepository{}
	router := newTestRouter(repo)

	body := `{"start":"2026-03-01T09:00:00Z","end":"2026-03-01T17:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/7", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got windowView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.PrincipalID)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), got.Start)
	require.Len(t, repo.windows, 1)
}

func TestHandleAddWindowRejectsInvalidInput(t *testing.T) {
	router := newTestRouter(&mockRepository{})

	cases := map[string]struct {
		target string
		body   string
		code   int
	}{
		"bad principal id": {"/abc", `{"start":"2026-03-01T09:00:00Z","end":"2026-03-01T17:00:00Z"}`, http.StatusBadRequest},
		"malformed body":   {"/7", `{`, http.StatusBadRequest},
		"missing end":      {"/7", `{"start":"2026-03-01T09:00:00Z"}`, http.StatusBadRequest},
		"inverted interval": {"/7",
			`{"start":"2026-03-01T17:00:00Z","end":"2026-03-01T09:00:00Z"}`, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestHandleForPrincipalReportsRestriction(t *testing.T) {
	repo := &mockRepository{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"restricted":false,"windows":[]}`, rec.Body.String())

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := repo.Insert(req.Context(), 7, start, start.Add(time.Hour))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Restricted bool         `json:"restricted"`
		Windows    []windowView `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Restricted)
	require.Len(t, got.Windows, 1)
}
