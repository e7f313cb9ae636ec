package access

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse/gatehouse/internal/platform/httpx"
)

// Handler exposes the decision entry point over HTTP.
type Handler struct {
	logger    *slog.Logger
	evaluator *Evaluator
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, evaluator *Evaluator) *Handler {
	return &Handler{
		logger:    logger,
		evaluator: evaluator,
		validator: validator.New(),
	}
}

// MountRoutes registers access routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/evaluate", h.handleEvaluate)
}

// PrincipalID is a pointer so presence is validated without rejecting an id
// of 0: an attempt against any non-existent id still gets evaluated and
// logged as USER_NOT_FOUND.
type evaluateRequest struct {
	PrincipalID *int64 `json:"principal_id" validate:"required"`
	PIN         string `json:"pin" validate:"required"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "principal_id and pin are required")
		return
	}

	// RemoteAddr has been rewritten by the RealIP middleware.
	decision, err := h.evaluator.Evaluate(r.Context(), *req.PrincipalID, req.PIN, time.Now().UTC(), r.RemoteAddr)
	if err != nil {
		// Storage failure: no verdict was reached. Callers must deny at
		// their end rather than read this as a DENY decision.
		httpx.Problem(w, http.StatusInternalServerError, "Evaluation Failed", "access not decided")
		return
	}
	httpx.JSON(w, http.StatusOK, decision)
}
