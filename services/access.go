package services

import (
	"time"

	"github.com/pworkhq/portal/database"
)

// CanAccess decides whether a user may reach a navigable item. The check is
// an inclusive OR across the role definition, the item's own role list and
// the external-link default, not a strict hierarchy:
//
//  1. ADMIN always has access.
//  2. adminOnly denies every other role, overriding everything below.
//  3. Otherwise access is granted when the user's role definition lists the
//     item's route, OR the item's allowedRoles names the user's role, OR the
//     item is an external link with no allowedRoles at all.
//
// An internal item with no allowedRoles and no matching route entry is denied
// by default; the "open" default applies to external links only.
func CanAccess(user *database.User, item database.MenuItemConfig, cfg *database.AppConfig) bool {
	if user == nil {
		return false
	}
	if user.Role == database.RoleAdmin {
		return true
	}
	if item.AdminOnly {
		return false
	}

	allowedByRole := false
	if def := cfg.RoleByID(user.Role); def != nil {
		for _, route := range def.AllowedRoutes {
			if route == item.ID {
				allowedByRole = true
				break
			}
		}
	}

	allowedByItemConfig := false
	for _, role := range item.AllowedRoles {
		if role == user.Role {
			allowedByItemConfig = true
			break
		}
	}

	isOpenExternal := item.Type == database.MenuExternal && len(item.AllowedRoles) == 0

	return allowedByRole || allowedByItemConfig || isOpenExternal
}

// CanAccessRoute looks the route id up in the sidebar menu and applies
// CanAccess. Routes not present in the menu are open (the original router
// only guards configured menu items).
func CanAccessRoute(user *database.User, routeID string, cfg *database.AppConfig) bool {
	for _, item := range cfg.SidebarMenu {
		if item.ID == routeID {
			return CanAccess(user, item, cfg)
		}
	}
	return true
}

// VisibleMenu returns the sidebar items the user can see, in configured
// order. Hidden items are dropped before the access check.
func VisibleMenu(user *database.User, cfg *database.AppConfig) []database.MenuItemConfig {
	menu := []database.MenuItemConfig{}
	for _, item := range cfg.SidebarMenu {
		if !item.Visible {
			continue
		}
		if CanAccess(user, item, cfg) {
			menu = append(menu, item)
		}
	}
	return menu
}

// HasCapability reports whether the user's role definition carries a
// capability flag. ADMIN implicitly has every capability.
func HasCapability(user *database.User, capability string, cfg *database.AppConfig) bool {
	if user == nil {
		return false
	}
	if user.Role == database.RoleAdmin {
		return true
	}
	def := cfg.RoleByID(user.Role)
	if def == nil {
		return false
	}
	for _, c := range def.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// ActiveNotices filters the configured notices down to the ones applicable
// for a user on a route at the given moment: active flag set, now inside the
// optional date window, and role/route targeting either empty or matching.
func ActiveNotices(user *database.User, routeID string, cfg *database.AppConfig, now time.Time) []database.Notice {
	if routeID == "" {
		routeID = "dashboard"
	}

	active := []database.Notice{}
	for _, notice := range cfg.Notices {
		if !notice.Active {
			continue
		}
		if notice.StartDate != "" {
			if start, err := time.Parse("2006-01-02", notice.StartDate); err == nil && now.Before(start) {
				continue
			}
		}
		if notice.EndDate != "" {
			// End of day: a notice ending today is still shown today.
			if end, err := time.Parse("2006-01-02", notice.EndDate); err == nil && now.After(end.Add(24*time.Hour)) {
				continue
			}
		}
		if len(notice.TargetRoles) > 0 && !contains(notice.TargetRoles, user.Role) {
			continue
		}
		if len(notice.TargetRoutes) > 0 && !contains(notice.TargetRoutes, routeID) {
			continue
		}
		active = append(active, notice)
	}
	return active
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
