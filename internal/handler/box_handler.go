package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"boxmgr/internal/model"
)

type boxService interface {
	ListBoxes(ctx context.Context, categoryID *int64) ([]model.BoxWithCategory, error)
	GetBox(ctx context.Context, id int64) (model.BoxDetail, error)
	CreateBox(ctx context.Context, req model.CreateBoxRequest) (model.Box, error)
	UpdateBox(ctx context.Context, id int64, req model.UpdateBoxRequest) (model.BoxWithCategory, error)
	DeleteBox(ctx context.Context, id int64) error
	AddItem(ctx context.Context, boxID int64, req model.AddItemRequest) (model.BoxItem, error)
	RemoveItem(ctx context.Context, boxID int64, itemID int64) error
}

type BoxHandler struct {
	inventory boxService
}

func NewBoxHandler(inventory boxService) *BoxHandler {
	return &BoxHandler{inventory: inventory}
}

// List returns all boxes, optionally filtered by ?categoryId=<id>.
func (h *BoxHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(w, r, "Invalid category filter", raw)
			return
		}
		categoryID = &id
	}

	boxes, err := h.inventory.ListBoxes(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, boxes)
}

func (h *BoxHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid box ID", chi.URLParam(r, "id"))
		return
	}

	box, err := h.inventory.GetBox(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, box)
}

func (h *BoxHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBoxRequest
	if !decodeBody(w, r, &req) {
		return
	}

	box, err := h.inventory.CreateBox(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, box)
}

func (h *BoxHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid box ID", chi.URLParam(r, "id"))
		return
	}

	var req model.UpdateBoxRequest
	if !decodeBody(w, r, &req) {
		return
	}

	box, err := h.inventory.UpdateBox(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, box)
}

func (h *BoxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid box ID", chi.URLParam(r, "id"))
		return
	}

	if err := h.inventory.DeleteBox(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "Box deleted"})
}

func (h *BoxHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid box ID", chi.URLParam(r, "id"))
		return
	}

	var req model.AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	item, err := h.inventory.AddItem(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, item)
}

func (h *BoxHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid box ID", chi.URLParam(r, "id"))
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil || itemID <= 0 {
		badRequest(w, r, "Invalid item ID", chi.URLParam(r, "itemId"))
		return
	}

	if err := h.inventory.RemoveItem(r.Context(), id, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "Item removed"})
}
