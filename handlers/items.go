package handlers

import (
	"log"
	"net/http"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

type createItemRequest struct {
	Title       string                   `json:"title"`
	GroupID     string                   `json:"groupId" validate:"required"`
	Description string                   `json:"description"`
	Data        map[string]any           `json:"data"`
	Checklists  []database.ChecklistItem `json:"checklists"`
	Status      string                   `json:"status"`
	Priority    string                   `json:"priority"`
	AssigneeID  string                   `json:"assigneeId"`
	StartDate   string                   `json:"startDate"`
	DueDate     string                   `json:"dueDate"`
}

// AddItem creates a ticket in a group and runs the creation pass of the
// automation rules before the first save.
func (h *ProjectHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeValid(r, &req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	today := time.Now().Format("2006-01-02")
	item := database.Ticket{
		ID:          uuid.NewString(),
		Title:       req.Title,
		GroupID:     req.GroupID,
		Description: req.Description,
		Checklists:  req.Checklists,
		Comments:    []database.Comment{},
		Data:        req.Data,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}
	if item.Title == "" {
		item.Title = "New Task"
	}
	if item.Data == nil {
		item.Data = map[string]any{}
	}
	if item.Status == "" {
		item.Status = "To Do"
	}
	if item.Priority == "" {
		item.Priority = "Medium"
	}
	if item.StartDate == "" {
		item.StartDate = today
	}
	if item.DueDate == "" {
		item.DueDate = today
	}

	h.mutateProject(w, mux.Vars(r)["id"], func(p *database.Project) error {
		change := services.ChangeContext{}
		if statusCol := p.StatusColumn(); statusCol != nil {
			if val, ok := item.Data[statusCol.ID]; ok && val != nil {
				change = services.ChangeContext{ColumnID: statusCol.ID, NewValue: val}
			}
		}
		item = services.ApplyAutomations(p, item, change, true)

		p.Items = append(p.Items, item)
		return nil
	})
}

type updateItemRequest struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	GroupID     *string                   `json:"groupId"`
	Archived    *bool                     `json:"archived"`
	Status      *string                   `json:"status"`
	Priority    *string                   `json:"priority"`
	AssigneeID  *string                   `json:"assigneeId"`
	StartDate   *string                   `json:"startDate"`
	DueDate     *string                   `json:"dueDate"`
	Checklists  *[]database.ChecklistItem `json:"checklists"`
	Data        map[string]any            `json:"data"`
}

// UpdateItem applies a partial ticket update. When the dynamic data map is
// included it replaces the stored map wholesale, and every key whose value
// changed runs two automation passes: the generic rule loop, and the
// separate NOTIFY_USER matching pass that prepends a system comment (and
// mails the target, best-effort). The two passes stay independent on
// purpose; NOTIFY rules never fire inside the generic loop.
func (h *ProjectHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]

	var req updateItemRequest
	if err := decodeValid(r, &req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	project, err := h.store.FindProjectByItem(itemID)
	if err != nil {
		log.Printf("Error locating item: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	users, err := h.store.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	idx := project.FindItem(itemID)
	updated := project.Items[idx]

	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.GroupID != nil {
		updated.GroupID = *req.GroupID
	}
	if req.Archived != nil {
		updated.Archived = *req.Archived
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}
	if req.Priority != nil {
		updated.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		updated.AssigneeID = *req.AssigneeID
	}
	if req.StartDate != nil {
		updated.StartDate = *req.StartDate
	}
	if req.DueDate != nil {
		updated.DueDate = *req.DueDate
	}
	if req.Checklists != nil {
		updated.Checklists = *req.Checklists
	}

	if req.Data != nil {
		oldData := project.Items[idx].Data
		updated.Data = req.Data

		for colID, newValue := range req.Data {
			if reflect.DeepEqual(oldData[colID], newValue) {
				continue
			}

			updated = services.ApplyAutomations(project, updated, services.ChangeContext{
				ColumnID: colID,
				NewValue: newValue,
			}, false)

			for _, rule := range services.NotifyRules(project, colID, newValue) {
				if rule.ActionTargetID == "" {
					continue
				}
				target := findUserByID(users, rule.ActionTargetID)
				if target == nil {
					continue
				}

				comment := services.SystemComment(target, newValue)
				updated.Comments = append([]database.Comment{comment}, updated.Comments...)

				h.sendNotifyMail(target)
			}
		}
	}

	project.Items[idx] = updated

	if err := h.store.SaveProject(project); err != nil {
		log.Printf("Error saving project: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastProjects()
	writeJSON(w, http.StatusOK, updated)
}

// DeleteItem removes a ticket from its project.
func (h *ProjectHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]

	project, err := h.store.FindProjectByItem(itemID)
	if err != nil {
		log.Printf("Error locating item: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	items := project.Items[:0]
	for _, item := range project.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	project.Items = items

	if err := h.store.SaveProject(project); err != nil {
		log.Printf("Error saving project: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastProjects()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

// AddComment prepends a comment to a ticket; the list stays newest-first.
func (h *ProjectHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]
	actor := currentUser(r)

	var req commentRequest
	if err := decodeValid(r, &req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	project, err := h.store.FindProjectByItem(itemID)
	if err != nil {
		log.Printf("Error locating item: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if project == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	idx := project.FindItem(itemID)
	comment := database.Comment{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Text:      req.Text,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	project.Items[idx].Comments = append([]database.Comment{comment}, project.Items[idx].Comments...)

	if err := h.store.SaveProject(project); err != nil {
		log.Printf("Error saving project: %v", err)
		http.Error(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	h.broadcastProjects()
	writeJSON(w, http.StatusCreated, comment)
}

// sendNotifyMail mails a notify-rule target about a field change.
// Best-effort: failures are logged, never surfaced.
func (h *ProjectHandler) sendNotifyMail(target *database.User) {
	cfg, err := h.store.GetConfig()
	if err != nil {
		return
	}

	for _, tpl := range cfg.EmailTemplates {
		if tpl.Trigger != "TICKET_UPDATED" {
			continue
		}
		subject, body := services.RenderTemplate(tpl, cfg, target)
		if err := h.mailer.Send(cfg.SMTPConfig, target.Email, subject, body); err != nil {
			log.Printf("Warning: failed to send notify email: %v", err)
		}
		return
	}
}

func findUserByID(users []database.User, id string) *database.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
