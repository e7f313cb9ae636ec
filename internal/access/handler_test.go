package access

import (
	"errors"
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

func newTestRouter(store *fakeStore) *chi.Mux {
	h := NewHandler(nil, NewEvaluator(store, nil, nil))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestHandleEvaluateReturnsDecision(t *testing.T) {
	store := newFakeStore()
	store.principals[1] = activePrincipal(t, 1)
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"principal_id":1,"pin":"482916"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verdict":"GRANT","reason":"ACCESS_GRANTED"}`, rec.Body.String())
	require.Len(t, store.log, 1)
}

func TestHandleEvaluateDenyIsStillHTTP200(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"principal_id":42,"pin":"000000"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verdict":"DENY","reason":"USER_NOT_FOUND"}`, rec.Body.String())
}

func TestHandleEvaluateRecordsOrigin(t *testing.T) {
	store := newFakeStore()
	store.principals[1] = activePrincipal(t, 1)
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"principal_id":1,"pin":"482916"}`))
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.log, 1)
	require.NotNil(t, store.log[0].Origin)
	assert.Equal(t, "203.0.113.9:51234", *store.log[0].Origin)
	assert.WithinDuration(t, time.Now().UTC(), store.log[0].Timestamp, 5*time.Second)
}

func TestHandleEvaluateZeroIDIsEvaluatedNotRejected(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"principal_id":0,"pin":"482916"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// 0 is present, just unknown: it must reach the evaluator and be logged.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verdict":"DENY","reason":"USER_NOT_FOUND"}`, rec.Body.String())
	require.Len(t, store.log, 1)
	assert.Nil(t, store.log[0].PrincipalID)
}

func TestHandleEvaluateRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(newFakeStore())

	for name, body := range map[string]string{
		"garbage":        `{not json`,
		"missing pin":    `{"principal_id":1}`,
		"missing id":     `{"pin":"482916"}`,
		"wrong id type":  `{"principal_id":"one","pin":"482916"}`,
		"empty document": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleEvaluateStorageFailureIsNotADecision(t *testing.T) {
	store := newFakeStore()
	store.principals[1] = activePrincipal(t, 1)
	store.appendErr = errors.New("connection lost")
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"principal_id":1,"pin":"482916"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "access not decided")
	assert.Empty(t, store.log)
}
