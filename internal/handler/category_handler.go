package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"boxmgr/internal/model"
)

type categoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	CreateCategory(ctx context.Context, req model.CreateCategoryRequest) (model.Category, error)
	UpdateCategory(ctx context.Context, id int64, req model.UpdateCategoryRequest) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type CategoryHandler struct {
	inventory categoryService
}

func NewCategoryHandler(inventory categoryService) *CategoryHandler {
	return &CategoryHandler{inventory: inventory}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.inventory.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid category ID", chi.URLParam(r, "id"))
		return
	}

	category, err := h.inventory.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.inventory.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid category ID", chi.URLParam(r, "id"))
		return
	}

	var req model.UpdateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.inventory.UpdateCategory(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid category ID", chi.URLParam(r, "id"))
		return
	}

	if err := h.inventory.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
