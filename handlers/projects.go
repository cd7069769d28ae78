package handlers

import (
	"log"
	"math/rand"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// ProjectHandler handles boards: project CRUD plus the column, group and
// automation sub-resources. Every mutation loads the project document,
// rewrites the changed array wholesale and saves the whole document back;
// concurrent edits race and the last save wins.
type ProjectHandler struct {
	store  *database.Store
	hub    *services.Hub
	mailer *services.Mailer
}

func NewProjectHandler(store *database.Store, hub *services.Hub, mailer *services.Mailer) *ProjectHandler {
	return &ProjectHandler{
		store:  store,
		hub:    hub,
		mailer: mailer,
	}
}

// canManageBoard gates structural board changes the way the board toolbar
// does: admins and managers only.
func canManageBoard(user *database.User) bool {
	return user != nil && (user.Role == database.RoleAdmin || user.Role == database.RoleManager)
}

// ListProjects returns every project document.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects()
	if err != nil {
		log.Printf("Error listing projects: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []database.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProject returns one project document.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, project)
}

type createProjectRequest struct {
	Title string `json:"title" validate:"required"`
}

// CreateProject builds a new board from the default scaffold: status, owner
// and due-date columns plus one starting group.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req createProjectRequest
	if err := decodeValid(r, &req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	project := database.NewProjectScaffold(req.Title)
	project.ID = uuid.NewString()

	if err := h.store.SaveProject(&project); err != nil {
		log.Printf("Error saving project: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastProjects()
	writeJSON(w, http.StatusCreated, project)
}

type updateProjectRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Members     *[]string `json:"members"`
	Archived    *bool     `json:"archived"`
}

// UpdateProject applies a partial update to the project's own fields.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req updateProjectRequest
	if err := decodeValid(r, &req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	h.mutateProject(w, mux.Vars(r)["id"], func(p *database.Project) error {
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Members != nil {
			p.Members = *req.Members
		}
		if req.Archived != nil {
			p.Archived = *req.Archived
		}
		return nil
	})
}

// DeleteProject removes the board and every item embedded in it.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.store.DeleteProject(mux.Vars(r)["id"]); err != nil {
		log.Printf("Error deleting project: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastProjects()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// --- Columns ---

// AddColumn appends a column to the board.
func (h *ProjectHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var col database.BoardColumn
	if err := decodeValid(r, &col); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if col.ID == "" {
		col.ID = uuid.NewString()
	}

	h.mutateProject(w, mux.Vars(r)["id"], func(p *database.Project) error {
		p.Columns = append(p.Columns, col)
		return nil
	})
}

// UpdateColumn replaces the fields of one column, including its option list.
// Renaming a status option here does not rewrite cells already holding the
// old label; those tickets fall into the "no status" lane from then on.
func (h *ProjectHandler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)

	type columnPatch struct {
		Title   *string                  `json:"title"`
		Width   *string                  `json:"width"`
		Options *[]database.ColumnOption `json:"options"`
	}
	var patch columnPatch
	if err := decodeValid(r, &patch); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	h.mutateProject(w, vars["id"], func(p *database.Project) error {
		for i := range p.Columns {
			if p.Columns[i].ID != vars["columnId"] {
				continue
			}
			if patch.Title != nil {
				p.Columns[i].Title = *patch.Title
			}
			if patch.Width != nil {
				p.Columns[i].Width = *patch.Width
			}
			if patch.Options != nil {
				p.Columns[i].Options = *patch.Options
			}
		}
		return nil
	})
}

// DeleteColumn drops the column definition. Ticket cells keyed by the
// removed column stay in place; deleting a column never deletes tickets.
func (h *ProjectHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	h.mutateProject(w, vars["id"], func(p *database.Project) error {
		cols := p.Columns[:0]
		for _, c := range p.Columns {
			if c.ID != vars["columnId"] {
				cols = append(cols, c)
			}
		}
		p.Columns = cols
		return nil
	})
}

// --- Groups ---

// AddGroup appends a group; its color is drawn from the group palette.
func (h *ProjectHandler) AddGroup(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var group database.BoardGroup
	if err := decodeValid(r, &group); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	group.Color = database.GroupColors[rand.Intn(len(database.GroupColors))]

	h.mutateProject(w, mux.Vars(r)["id"], func(p *database.Project) error {
		p.Groups = append(p.Groups, group)
		return nil
	})
}

// UpdateGroup patches a group's title, color, collapsed or archived state.
func (h *ProjectHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)

	type groupPatch struct {
		Title     *string `json:"title"`
		Color     *string `json:"color"`
		Collapsed *bool   `json:"collapsed"`
		Archived  *bool   `json:"archived"`
	}
	var patch groupPatch
	if err := decodeValid(r, &patch); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	h.mutateProject(w, vars["id"], func(p *database.Project) error {
		for i := range p.Groups {
			if p.Groups[i].ID != vars["groupId"] {
				continue
			}
			if patch.Title != nil {
				p.Groups[i].Title = *patch.Title
			}
			if patch.Color != nil {
				p.Groups[i].Color = *patch.Color
			}
			if patch.Collapsed != nil {
				p.Groups[i].Collapsed = *patch.Collapsed
			}
			if patch.Archived != nil {
				p.Groups[i].Archived = *patch.Archived
			}
		}
		return nil
	})
}

// DeleteGroup removes the group and cascades to every ticket in it.
func (h *ProjectHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	h.mutateProject(w, vars["id"], func(p *database.Project) error {
		groups := p.Groups[:0]
		for _, g := range p.Groups {
			if g.ID != vars["groupId"] {
				groups = append(groups, g)
			}
		}
		p.Groups = groups

		items := p.Items[:0]
		for _, item := range p.Items {
			if item.GroupID != vars["groupId"] {
				items = append(items, item)
			}
		}
		p.Items = items
		return nil
	})
}

// --- Automations ---

// AddAutomation appends a rule to the project's rule list.
func (h *ProjectHandler) AddAutomation(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var rule database.AutomationRule
	if err := decodeValid(r, &rule); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	h.mutateProject(w, mux.Vars(r)["id"], func(p *database.Project) error {
		p.Automations = append(p.Automations, rule)
		return nil
	})
}

// DeleteAutomation removes a rule by id.
func (h *ProjectHandler) DeleteAutomation(w http.ResponseWriter, r *http.Request) {
	if !canManageBoard(currentUser(r)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	h.mutateProject(w, vars["id"], func(p *database.Project) error {
		rules := p.Automations[:0]
		for _, rule := range p.Automations {
			if rule.ID != vars["ruleId"] {
				rules = append(rules, rule)
			}
		}
		p.Automations = rules
		return nil
	})
}

// mutateProject runs the load-mutate-save-broadcast cycle shared by every
// board mutation and writes the updated project back to the client.
func (h *ProjectHandler) mutateProject(w http.ResponseWriter, projectID string, mutate func(*database.Project) error) {
	project, err := h.store.GetProject(projectID)
	if err != nil {
		log.Printf("Error loading project: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	if err := mutate(project); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.SaveProject(project); err != nil {
		log.Printf("Error saving project: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastProjects()
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) broadcastProjects() {
	projects, err := h.store.ListProjects()
	if err != nil {
		log.Printf("Error listing projects for broadcast: %v", err)
		return
	}
	h.hub.Broadcast(services.SnapshotProjects, projects)
}
