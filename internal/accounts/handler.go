package accounts

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse/gatehouse/internal/platform/httpx"
)

// Handler wires HTTP endpoints for account lifecycle and role operations.
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

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleRegister)
	r.Get("/", h.handleList)
	r.Get("/confirm", h.handleConfirm)
	r.Post("/login", h.handleLogin)
	r.Get("/{principalID}", h.handleGet)
	r.Post("/{principalID}/approve", h.handleApprove)
	r.Post("/{principalID}/deactivate", h.handleDeactivate)
	r.Post("/{principalID}/grant-admin", h.handleGrantAdmin)
	r.Post("/{principalID}/clear-admin", h.handleClearAdmin)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type registerResponse struct {
	PrincipalID int64 `json:"principal_id"`
	// ConfirmationToken is returned so the surrounding layer can build the
	// confirmation link; delivery also goes through the mail queue.
	ConfirmationToken string `json:"confirmation_token"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type grantAdminRequest struct {
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}

type principalView struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	Status            Status     `json:"status"`
	Role              Role       `json:"role"`
	RoleExpiresAt     *time.Time `json:"role_expires_at,omitempty"`
	EmailConfirmedAt  *time.Time `json:"email_confirmed_at,omitempty"`
	FailedPINAttempts int        `json:"failed_pin_attempts"`
	LastFailedAt      *time.Time `json:"last_failed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func viewOf(p *Principal) principalView {
	return principalView{
		ID:                p.ID,
		Email:             p.Email,
		Status:            p.Status,
		Role:              p.Role,
		RoleExpiresAt:     p.RoleExpiresAt,
		EmailConfirmedAt:  p.EmailConfirmedAt,
		FailedPINAttempts: p.FailedPINAttempts,
		LastFailedAt:      p.LastFailedAt,
		CreatedAt:         p.CreatedAt,
	}
}

func (h *Handler) validationProblem(w http.ResponseWriter, err error) {
	fields := make([]string, 0, 4)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range verrs {
			fields = append(fields, fieldErr.Field())
		}
	}
	httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fields: "+strings.Join(fields, ", "))
}

func principalIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "principalID"), 10, 64)
	return id, err == nil
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.validationProblem(w, err)
		return
	}
	reg, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("principal registered", slog.Int64("principal_id", reg.PrincipalID))
	httpx.JSON(w, http.StatusCreated, registerResponse{
		PrincipalID:       reg.PrincipalID,
		ConfirmationToken: reg.ConfirmationToken,
	})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "token query parameter required")
		return
	}
	if err := h.service.ConfirmEmail(r.Context(), token); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.validationProblem(w, err)
		return
	}
	principal, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"principal_id": principal.ID,
		"role":         principal.Role,
		"admin_access": principal.HasAdminAccess(time.Now().UTC()),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	principals, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]principalView, 0, len(principals))
	for i := range principals {
		views = append(views, viewOf(&principals[i]))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := principalIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	principal, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(principal))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := principalIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	pin, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("principal approved", slog.Int64("principal_id", id))
	// The plaintext PIN crosses this boundary exactly once.
	httpx.JSON(w, http.StatusOK, map[string]string{"pin": pin})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := principalIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("principal deactivated", slog.Int64("principal_id", id))
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := principalIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	var req grantAdminRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.validationProblem(w, err)
		return
	}
	if err := h.service.GrantTemporaryAdmin(r.Context(), id, req.ExpiresAt); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("temporary admin granted", slog.Int64("principal_id", id), slog.Time("expires_at", req.ExpiresAt))
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

func (h *Handler) handleClearAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := principalIDParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid principal id")
		return
	}
	if err := h.service.ClearAdmin(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
