package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// UserHandler handles the user directory.
type UserHandler struct {
	store       *database.Store
	authService *services.AuthService
	hub         *services.Hub
	mailer      *services.Mailer
}

func NewUserHandler(store *database.Store, authService *services.AuthService, hub *services.Hub, mailer *services.Mailer) *UserHandler {
	return &UserHandler{
		store:       store,
		authService: authService,
		hub:         hub,
		mailer:      mailer,
	}
}

// ListUsers returns every user with credentials stripped.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	sanitized := make([]database.User, 0, len(users))
	for _, u := range users {
		u.Password = ""
		sanitized = append(sanitized, u)
	}

	writeJSON(w, http.StatusOK, sanitized)
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
	JobTitle string `json:"jobTitle"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

// CreateUser provisions a new account. Requires the manage_users capability.
// The welcome template is mailed best-effort when SMTP is configured.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	cfg := h.config()
	if !services.HasCapability(currentUser(r), "manage_users", cfg) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req createUserRequest
	if err := decodeValid(r, &req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	password := req.Password
	if password == "" {
		password = "changeme123"
	}
	hash, err := h.authService.HashPassword(password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	role := req.Role
	if role == "" {
		role = database.RoleUser
	}

	user := database.User{
		ID:          uuid.NewString(),
		Username:    req.Username,
		Password:    hash,
		Name:        req.Name,
		Email:       req.Email,
		Role:        role,
		Avatar:      req.Avatar,
		MemberSince: time.Now().Format("2006-01-02"),
		JobTitle:    req.JobTitle,
		Location:    req.Location,
		Bio:         req.Bio,
		Permissions: []string{},
	}
	if user.Avatar == "" {
		user.Avatar = "https://ui-avatars.com/api/?name=" + req.Name + "&background=random"
	}

	if err := h.store.SaveUser(&user); err != nil {
		log.Printf("Error saving user: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	// Welcome mail, best-effort.
	for _, tpl := range cfg.EmailTemplates {
		if tpl.Trigger == "WELCOME_PASSWORD" {
			subject, body := services.RenderTemplate(tpl, cfg, &user)
			if err := h.mailer.Send(cfg.SMTPConfig, user.Email, subject, body); err != nil {
				log.Printf("Warning: failed to send welcome email: %v", err)
			}
			break
		}
	}

	h.broadcastUsers()

	user.Password = ""
	writeJSON(w, http.StatusCreated, user)
}

// UpdateUser applies a partial profile update. Users can edit their own
// profile; changing anyone else requires manage_users.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := currentUser(r)
	cfg := h.config()

	if actor.ID != id && !services.HasCapability(actor, "manage_users", cfg) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	user, err := h.store.GetUser(id)
	if err != nil {
		log.Printf("Error loading user: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	// Role changes are an admin concern even on your own profile.
	if _, ok := patch["role"]; ok && !services.HasCapability(actor, "manage_users", cfg) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	// New passwords are hashed before the merge.
	if raw, ok := patch["password"]; ok {
		var plain string
		if err := json.Unmarshal(raw, &plain); err != nil || plain == "" {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}
		hash, err := h.authService.HashPassword(plain)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}
		hashed, _ := json.Marshal(hash)
		patch["password"] = hashed
	}

	merged, err := json.Marshal(patch)
	if err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(merged, user); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	user.ID = id

	if err := h.store.SaveUser(user); err != nil {
		log.Printf("Error saving user: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastUsers()

	sanitized := *user
	sanitized.Password = ""
	writeJSON(w, http.StatusOK, sanitized)
}

// DeleteUser removes an account. Tickets keep dangling references to the
// deleted id.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !services.HasCapability(currentUser(r), "manage_users", h.config()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.store.DeleteUser(id); err != nil {
		log.Printf("Error deleting user: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastUsers()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *UserHandler) broadcastUsers() {
	users, err := h.store.ListUsers()
	if err != nil {
		log.Printf("Error listing users for broadcast: %v", err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	h.hub.Broadcast(services.SnapshotUsers, users)
}

func (h *UserHandler) config() *database.AppConfig {
	cfg, err := h.store.GetConfig()
	if err != nil {
		return database.DefaultConfig()
	}
	return cfg
}
