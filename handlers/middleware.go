package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

type contextKey string

const userContextKey contextKey = "user"

type AuthMiddleware struct {
	authService *services.AuthService
	store       *database.Store
}

func NewAuthMiddleware(authService *services.AuthService, store *database.Store) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		store:       store,
	}
}

// Auth verifies the Bearer token and loads the session user into the request
// context. Tokens for deleted users are rejected.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		// Extract token from Bearer format
		authParts := strings.Split(authHeader, " ")
		if len(authParts) != 2 || authParts[0] != "Bearer" {
			http.Error(w, "invalid authorization format", http.StatusUnauthorized)
			return
		}

		tokenString := authParts[1]

		// Verify token
		userID, err := m.authService.VerifyJWT(tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		user, err := m.store.GetUser(userID)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "unknown user", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the session user placed in the context by Auth.
func currentUser(r *http.Request) *database.User {
	user, _ := r.Context().Value(userContextKey).(*database.User)
	return user
}
