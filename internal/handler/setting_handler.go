package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"boxmgr/internal/model"
	"boxmgr/internal/service"
)

type SettingHandler struct {
	settings service.SettingStore
}

func NewSettingHandler(settings service.SettingStore) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// List returns all settings with secret values masked.
func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	for i := range settings {
		if isSecretSetting(settings[i].Key) {
			settings[i].Value = maskValue(settings[i].Value)
		}
	}
	writeSuccess(w, http.StatusOK, settings)
}

// Set saves a setting. The key comes from the URL for PUT /{key} and
// from the body for POST /.
func (h *SettingHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req model.SaveSettingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		key = req.Key
	}
	if strings.TrimSpace(key) == "" {
		badRequest(w, r, "Setting key is required", "")
		return
	}

	if err := h.settings.Set(r.Context(), key, req.Value, req.Description); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "Setting saved"})
}

func isSecretSetting(key string) bool {
	return strings.Contains(key, "api_key") || strings.Contains(key, "secret") || strings.Contains(key, "password")
}

// maskValue keeps the last 4 characters so an admin can tell which key
// is configured without exposing it.
func maskValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
