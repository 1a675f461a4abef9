package handler

import (
	"context"
	"net/http"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db healthChecker
}

func NewHealthHandler(db healthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("UNAVAILABLE", "database unreachable"))
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
