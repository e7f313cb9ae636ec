package windows

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse/gatehouse/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the access window registry.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers window routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleRecent)
	r.Get("/{principalID}", h.handleForPrincipal)
	r.Post("/{principalID}", h.handleAdd)
}

type addWindowRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

type windowView struct {
	ID          int64     `json:"id"`
	PrincipalID int64     `json:"principal_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

func viewsOf(ws []Window) []windowView {
	out := make([]windowView, 0, len(ws))
	for _, w := range ws {
		out = append(out, windowView{ID: w.ID, PrincipalID: w.PrincipalID, Start: w.Start, End: w.End})
	}
	return out
}

func principalIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "principalID"), 10, 64)
	return id, err == nil
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := principalIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	var req addWindowRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start and end are required")
		return
	}
	window, err := h.service.Add(r.Context(), id, req.Start, req.End)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("access window added",
		slog.Int64("principal_id", id),
		slog.Time("start", window.Start),
		slog.Time("end", window.End),
	)
	httpx.JSON(w, http.StatusCreated, windowView{ID: window.ID, PrincipalID: window.PrincipalID, Start: window.Start, End: window.End})
}

func (h *Handler) handleForPrincipal(w http.ResponseWriter, r *http.Request) {
	id, ok := principalIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	schedule, err := h.service.ScheduleFor(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"restricted": schedule.IsRestricted(),
		"windows":    viewsOf(schedule.Windows()),
	})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ws, err := h.service.Recent(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewsOf(ws))
}
