package handlers

import (
	"log"
	"net/http"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// RouteGuard applies the navigation access check to API routes that back a
// guarded view. A denied user is silently redirected to the default landing
// view instead of getting an error.
type RouteGuard struct {
	store *database.Store
}

func NewRouteGuard(store *database.Store) *RouteGuard {
	return &RouteGuard{store: store}
}

func (g *RouteGuard) Guard(routeID string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		cfg, err := g.store.GetConfig()
		if err != nil {
			log.Printf("Error loading config: %v", err)
			cfg = database.DefaultConfig()
		}

		if !services.CanAccessRoute(user, routeID, cfg) {
			http.Redirect(w, r, "/api/dashboard", http.StatusSeeOther)
			return
		}

		next(w, r)
	}
}
