package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/all-in-users/internal/http/respond"
	"github.com/hongminglow/all-in-users/internal/logging"
	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/models/dto"
	"github.com/hongminglow/all-in-users/internal/users"
)

// CredentialValidator checks a username and password pair.
type CredentialValidator interface {
	ValidateCredentials(ctx context.Context, c users.Credentials) (*models.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// AuthHandler owns the login endpoint.
type AuthHandler struct {
	creds  CredentialValidator
	tokens TokenIssuer
	log    logging.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(creds CredentialValidator, tokens TokenIssuer, log logging.Logger) *AuthHandler {
	return &AuthHandler{creds: creds, tokens: tokens, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.handleLogin)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.creds.ValidateCredentials(r.Context(), users.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(w, r, h.log, "login", err)
		return
	}
	token, err := h.tokens.Generate(*user)
	if err != nil {
		h.log.Error(r.Context(), "generate token failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{AccessToken: token, User: *user})
}
