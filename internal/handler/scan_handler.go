package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"boxmgr/internal/model"
)

type scanService interface {
	Scan(ctx context.Context, boxID int64, dataURL string) ([]string, error)
}

type ScanHandler struct {
	scanner scanService
}

func NewScanHandler(scanner scanService) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// Scan runs image recognition over a captured box photo and files the
// detected items into the box.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		badRequest(w, r, "Invalid box ID", chi.URLParam(r, "id"))
		return
	}

	var req model.ScanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Image == "" {
		badRequest(w, r, "Image is required", "")
		return
	}

	added, err := h.scanner.Scan(r.Context(), id, req.Image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ScanResponse{AddedItems: added})
}
