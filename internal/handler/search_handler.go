package handler

import (
	"context"
	"net/http"

	"boxmgr/internal/model"
)

type searchService interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
	PrintOverview(ctx context.Context) ([]model.PrintCategory, error)
}

type SearchHandler struct {
	inventory searchService
}

func NewSearchHandler(inventory searchService) *SearchHandler {
	return &SearchHandler{inventory: inventory}
}

// Search finds items by name substring across all boxes, ?q=<query>.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		badRequest(w, r, "Query parameter q is required", "")
		return
	}

	results, err := h.inventory.Search(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, results)
}

// Print returns the full categories/boxes/items tree for the printable
// inventory summary.
func (h *SearchHandler) Print(w http.ResponseWriter, r *http.Request) {
	overview, err := h.inventory.PrintOverview(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, overview)
}
