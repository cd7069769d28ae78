package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// ConfigHandler serves the AppConfig singleton.
type ConfigHandler struct {
	store *database.Store
	hub   *services.Hub
}

func NewConfigHandler(store *database.Store, hub *services.Hub) *ConfigHandler {
	return &ConfigHandler{store: store, hub: hub}
}

// GetConfig returns the stored config, or the hard-coded default when the
// stored document is missing or unreadable.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetConfig()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// PatchConfig merges a partial config document over the stored one and
// rewrites it. Fields absent from the request body keep their stored values.
func (h *ConfigHandler) PatchConfig(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !services.HasCapability(user, "manage_config", h.mustConfig()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	cfg, err := h.store.GetConfig()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	if err := json.Unmarshal(body, cfg); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.store.SaveConfig(cfg); err != nil {
		log.Printf("Error saving config: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(services.SnapshotConfig, cfg)
	writeJSON(w, http.StatusOK, cfg)
}

// Dashboard is the default landing view: the menu the session user can see
// plus the notices currently targeting them. Route-guard denials land here.
func (h *ConfigHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	cfg, err := h.store.GetConfig()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	route := r.URL.Query().Get("route")
	writeJSON(w, http.StatusOK, map[string]any{
		"menu":    services.VisibleMenu(user, cfg),
		"notices": services.ActiveNotices(user, route, cfg, time.Now()),
	})
}

// mustConfig loads the config for permission checks, falling back to the
// default on storage failure so the request keeps its best-effort behavior.
func (h *ConfigHandler) mustConfig() *database.AppConfig {
	cfg, err := h.store.GetConfig()
	if err != nil {
		return database.DefaultConfig()
	}
	return cfg
}
