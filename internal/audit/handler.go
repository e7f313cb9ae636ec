package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse/gatehouse/internal/platform/httpx"
)

// Handler exposes ledger queries and the admin dashboard.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/logs", h.handleLogs)
	r.Get("/logs/{principalID}", h.handleHistory)
	r.Get("/dashboard", h.handleDashboard)
}

type entryView struct {
	ID          int64     `json:"id"`
	PrincipalID *int64    `json:"principal_id"`
	Timestamp   time.Time `json:"timestamp"`
	Result      Result    `json:"result"`
	Reason      string    `json:"reason"`
	Origin      *string   `json:"origin,omitempty"`
}

func entryViews(entries []Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{
			ID:          e.ID,
			PrincipalID: e.PrincipalID,
			Timestamp:   e.Timestamp,
			Result:      e.Result,
			Reason:      e.Reason,
			Origin:      e.Origin,
		})
	}
	return out
}

// handleLogs filters the ledger by principal, result, and a lower time bound.
// An unknown result value or malformed timestamp is rejected rather than
// silently ignored.
func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	var filters Filters

	if raw := r.URL.Query().Get("principal_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal_id filter")
			return
		}
		filters.PrincipalID = &id
	}
	if raw := r.URL.Query().Get("result"); raw != "" {
		if !ValidResult(raw) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "result must be GRANT or DENY")
			return
		}
		result := Result(raw)
		filters.Result = &result
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be RFC3339")
			return
		}
		from = from.UTC()
		filters.Since = &from
	}

	entries, err := h.service.Query(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entryViews(entries))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "principalID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	entries, err := h.service.HistoryFor(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entryViews(entries))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard aggregates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}
