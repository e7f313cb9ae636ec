package httpx

import (
	"errors"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicateEmail):
		Problem(w, http.StatusConflict, "Duplicate Email", err.Error())
	case errors.Is(err, shared.ErrNotEmailConfirmed):
		Problem(w, http.StatusConflict, "Email Not Confirmed", err.Error())
	case errors.Is(err, shared.ErrInvalidToken):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Token", err.Error())
	case errors.Is(err, shared.ErrPastExpiry):
		Problem(w, http.StatusUnprocessableEntity, "Past Expiry", err.Error())
	case errors.Is(err, shared.ErrInvalidInterval):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Interval", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
