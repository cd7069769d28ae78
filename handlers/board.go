package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// BoardHandler serves the derived board views: filtered/sorted table rows
// and the kanban lanes.
type BoardHandler struct {
	store *database.Store
}

func NewBoardHandler(store *database.Store) *BoardHandler {
	return &BoardHandler{store: store}
}

// GetBoard aggregates one project's items for rendering. Query parameters:
//
//	search      case-insensitive substring over title and description
//	filter      repeatable columnId:value pair (conjunctive), including the
//	            assignee_any and member_any pseudo-columns
//	sortBy      column id to sort on
//	sortDir     asc (default) or desc
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(mux.Vars(r)["id"])
	if err != nil {
		log.Printf("Error loading project: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	query := r.URL.Query()

	var filters []services.Filter
	for _, raw := range query["filter"] {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		filters = append(filters, services.Filter{ColumnID: parts[0], Value: parts[1]})
	}

	var sortSpec *services.SortSpec
	if sortBy := query.Get("sortBy"); sortBy != "" {
		sortSpec = &services.SortSpec{
			ColumnID: sortBy,
			Desc:     query.Get("sortDir") == "desc",
		}
	}

	items := services.FilterItems(project, query.Get("search"), filters)
	items = services.SortItems(items, sortSpec)
	groups := services.GroupByStatus(project, items)

	writeJSON(w, http.StatusOK, map[string]any{
		"projectId": project.ID,
		"columns":   project.Columns,
		"groups":    project.Groups,
		"items":     items,
		"kanban":    groups,
	})
}
