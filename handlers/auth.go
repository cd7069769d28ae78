package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	authService *services.AuthService
	store       *database.Store
}

func NewAuthHandler(authService *services.AuthService, store *database.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Login authenticates an identifier (username or email) and password and
// returns a session token with the user profile. Bad credentials get one
// inline message and no retry machinery.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeValid(r, &req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	users, err := h.store.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	user, err := h.authService.Authenticate(users, req.Identifier, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"status":  "error",
			"message": "Invalid username or password",
		})
		return
	}

	token, err := h.authService.CreateJWT(user.ID)
	if err != nil {
		log.Printf("Error creating JWT: %v", err)
		http.Error(w, "Authentication error", http.StatusInternalServerError)
		return
	}

	sanitized := *user
	sanitized.Password = ""

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"token":  token,
		"user":   sanitized,
	})
}

// VerifyToken checks if a session token is valid
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	// Get token from Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		http.Error(w, "Missing authorization header", http.StatusUnauthorized)
		return
	}

	// Extract token from Bearer format
	authParts := strings.Split(authHeader, " ")
	if len(authParts) != 2 || authParts[0] != "Bearer" {
		http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
		return
	}

	tokenString := authParts[1]

	// Verify token
	userID, err := h.authService.VerifyJWT(tokenString)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"userId": userID,
		"status": "valid",
	})
}

// Me returns the session user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	sanitized := *user
	sanitized.Password = ""
	writeJSON(w, http.StatusOK, sanitized)
}
