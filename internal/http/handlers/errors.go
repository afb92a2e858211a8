package handlers

import (
	"net/http"
	"strconv"

	"github.com/hongminglow/all-in-users/internal/http/respond"
	"github.com/hongminglow/all-in-users/internal/logging"
	"github.com/hongminglow/all-in-users/internal/middleware"
	"github.com/hongminglow/all-in-users/internal/users"
)

func statusFor(code users.Code) int {
	switch code {
	case users.CodeNotFound:
		return http.StatusNotFound
	case users.CodeConflict:
		return http.StatusConflict
	case users.CodeUnauthorized:
		return http.StatusUnauthorized
	case users.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to their status; anything else is logged
// and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, op string, err error) {
	if e, ok := users.AsError(err); ok {
		respond.Error(w, statusFor(e.Code), e.Message)
		return
	}
	log.Error(r.Context(), op+" failed", "request_id", middleware.RequestID(r.Context()), "error", err)
	respond.Error(w, http.StatusInternalServerError, "internal server error")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
