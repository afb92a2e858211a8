package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/all-in-users/internal/http/respond"
	"github.com/hongminglow/all-in-users/internal/logging"
	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/models/dto"
	"github.com/hongminglow/all-in-users/internal/storage"
	"github.com/hongminglow/all-in-users/internal/users"
)

// UserService is the subset of users.Service served over HTTP.
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, in users.CreateUserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, in users.UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (storage.DeleteResult, error)
	CreateProfile(ctx context.Context, userID int64, in users.CreateProfileInput) (*models.User, error)
}

// UsersHandler owns the /users endpoints.
type UsersHandler struct {
	svc UserService
	log logging.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(svc UserService, log logging.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, log: log}
}

// Register attaches user routes to the mux, each wrapped by guard.
func (h *UsersHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	routes := map[string]http.HandlerFunc{
		"GET /users":               h.handleList,
		"POST /users":              h.handleCreate,
		"GET /users/{id}":          h.handleGet,
		"PATCH /users/{id}":        h.handleUpdate,
		"PUT /users/{id}":          h.handleUpdate,
		"DELETE /users/{id}":       h.handleDelete,
		"POST /users/{id}/profile": h.handleCreateProfile,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, guard(fn))
	}
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.log, "list users", err)
		return
	}
	respond.JSON(w, http.StatusOK, "users fetched", list)
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, "get user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user fetched", user)
}

func (h *UsersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.svc.CreateUser(r.Context(), req.ToInput())
	if err != nil {
		writeError(w, r, h.log, "create user", err)
		return
	}
	h.log.Info(r.Context(), "user created", "id", user.ID, "username", user.Username)
	respond.JSON(w, http.StatusCreated, "user created", user)
}

func (h *UsersHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req dto.UpdateUserRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), id, req.ToInput())
	if err != nil {
		writeError(w, r, h.log, "update user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user updated", user)
}

func (h *UsersHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	res, err := h.svc.DeleteUser(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, "delete user", err)
		return
	}
	h.log.Info(r.Context(), "user deleted", "id", id)
	respond.JSON(w, http.StatusOK, "user deleted", res)
}

func (h *UsersHandler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req dto.CreateProfileRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.svc.CreateProfile(r.Context(), id, req.ToInput())
	if err != nil {
		writeError(w, r, h.log, "create profile", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "profile created", user)
}
