package services

import (
	"fmt"
	"time"

	"github.com/pworkhq/portal/database"
)

// ChangeContext describes a single field change on a ticket: the column that
// changed and its new value. The zero value means "no specific field" and is
// used for plain creation.
type ChangeContext struct {
	ColumnID string
	NewValue any
}

// ApplyAutomations evaluates a project's rule set against a ticket mutation
// and returns the possibly-modified ticket. Pure, no I/O. Rules apply in
// list order and each action is idempotent to reapply; the unchanged ticket
// is returned when nothing fired.
//
// NOTIFY_USER rules are deliberately not handled here. They are matched by a
// second, independent pass (NotifyRules) at the item-update call site, so a
// notify rule never fires inside this loop. Keep both paths separate;
// merging them changes the observed notification behavior.
func ApplyAutomations(project *database.Project, ticket database.Ticket, change ChangeContext, isNewItem bool) database.Ticket {
	if len(project.Automations) == 0 {
		return ticket
	}

	updated := ticket
	hasChanges := false

	// Copy-on-write for the data map so the caller's ticket stays intact.
	mutableData := func() map[string]any {
		if !hasChanges || updated.Data == nil {
			copied := make(map[string]any, len(ticket.Data)+1)
			for k, v := range ticket.Data {
				copied[k] = v
			}
			updated.Data = copied
		}
		return updated.Data
	}

	for _, rule := range project.Automations {
		if !rule.Active {
			continue
		}

		triggered := false
		if isNewItem {
			val := ticket.Data[rule.TriggerColumnID]
			if valueEquals(val, rule.TriggerValue) || (rule.TriggerValue == "" && truthy(val)) {
				triggered = true
			}
		} else if change.ColumnID == rule.TriggerColumnID {
			if rule.TriggerValue == "" || valueEquals(change.NewValue, rule.TriggerValue) {
				triggered = true
			}
		}

		if !triggered {
			continue
		}

		switch rule.ActionType {
		case database.ActionAssignUser:
			if rule.ActionTargetID != "" {
				updated.AssigneeID = rule.ActionTargetID
				hasChanges = true
			}
		case database.ActionUpdateField:
			if rule.ActionTargetID != "" && rule.ActionValue != "" {
				data := mutableData()
				data[rule.ActionTargetID] = rule.ActionValue
				hasChanges = true
			}
		case database.ActionCompleteChecklist:
			if len(updated.Checklists) > 0 {
				done := make([]database.ChecklistItem, len(updated.Checklists))
				for i, c := range updated.Checklists {
					c.Done = true
					done[i] = c
				}
				updated.Checklists = done
				hasChanges = true
			}
		}
		// Malformed rules (missing target or value) fall through silently.
	}

	if !hasChanges {
		return ticket
	}
	return updated
}

// NotifyRules returns the active NOTIFY_USER rules matching a field change.
// This is the second evaluation path described on ApplyAutomations; it runs
// on every field change alongside the generic pass.
func NotifyRules(project *database.Project, columnID string, newValue any) []database.AutomationRule {
	var matched []database.AutomationRule
	for _, rule := range project.Automations {
		if !rule.Active || rule.ActionType != database.ActionNotifyUser {
			continue
		}
		if rule.TriggerColumnID != columnID {
			continue
		}
		if rule.TriggerValue != "" && !valueEquals(newValue, rule.TriggerValue) {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}

// SystemComment builds the synthetic comment prepended to a ticket when a
// notify rule fires.
func SystemComment(target *database.User, newValue any) database.Comment {
	return database.Comment{
		ID:        fmt.Sprintf("sys_%d", time.Now().UnixMilli()),
		UserID:    "system",
		Text:      fmt.Sprintf("🤖 Automation: @%s notified about change to %q.", target.Username, fmt.Sprint(newValue)),
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

// valueEquals applies the strict-equality trigger comparison: only string
// cell values can match a trigger value.
func valueEquals(val any, want string) bool {
	s, ok := val.(string)
	return ok && s == want
}

// truthy mirrors the loose "has any value" trigger check: nil, empty string,
// zero and false are empty; everything else, including an empty list, counts
// as a value.
func truthy(val any) bool {
	switch v := val.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return true
	}
}
