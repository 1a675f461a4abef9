package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"boxmgr/internal/model"
)

type userService interface {
	List(ctx context.Context) ([]model.PublicUser, error)
	Get(ctx context.Context, id int64) (model.PublicUser, error)
	Create(ctx context.Context, username string, password string, isAdmin bool) (model.PublicUser, error)
	Update(ctx context.Context, id int64, req model.UpdateUserRequest) (model.PublicUser, error)
	Delete(ctx context.Context, id int64) error
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid user ID", chi.URLParam(r, "id"))
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Password, req.IsAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid user ID", chi.URLParam(r, "id"))
		return
	}

	var req model.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid user ID", chi.URLParam(r, "id"))
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
