package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pworkhq/portal/database"
)

func automationProject(rules ...database.AutomationRule) *database.Project {
	return &database.Project{
		ID: "p1",
		Columns: []database.BoardColumn{
			{ID: "status", Title: "Status", Type: database.ColumnStatus, Options: []database.ColumnOption{
				{ID: "o1", Label: "To Do", Color: "#9ca3af"},
				{ID: "o2", Label: "Done", Color: "#4ade80"},
			}},
			{ID: "notes", Title: "Notes", Type: database.ColumnText},
		},
		Groups:      []database.BoardGroup{{ID: "g1", Title: "Group"}},
		Automations: rules,
	}
}

func TestApplyAutomations_AssignOnCreate(t *testing.T) {
	project := automationProject(database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "Done",
		ActionType: database.ActionAssignUser, ActionTargetID: "u2",
	})

	ticket := database.Ticket{
		ID:      "t1",
		GroupID: "g1",
		Data:    map[string]any{"status": "Done"},
	}

	result := ApplyAutomations(project, ticket, ChangeContext{}, true)
	assert.Equal(t, "u2", result.AssigneeID)
}

func TestApplyAutomations_EmptyTriggerValueFiresOnAnyValue(t *testing.T) {
	rule := database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "",
		ActionType: database.ActionAssignUser, ActionTargetID: "u9",
	}

	project := automationProject(rule)

	withValue := database.Ticket{ID: "t1", Data: map[string]any{"status": "To Do"}}
	assert.Equal(t, "u9", ApplyAutomations(project, withValue, ChangeContext{}, true).AssigneeID)

	empty := database.Ticket{ID: "t2", Data: map[string]any{}}
	assert.Empty(t, ApplyAutomations(project, empty, ChangeContext{}, true).AssigneeID)
}

func TestApplyAutomations_UpdateOnlyFiresOnTriggerColumn(t *testing.T) {
	project := automationProject(database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "Done",
		ActionType: database.ActionAssignUser, ActionTargetID: "u2",
	})

	ticket := database.Ticket{ID: "t1", Data: map[string]any{"status": "Done"}}

	// Change to a different column does not fire even though the status
	// cell already holds the trigger value.
	result := ApplyAutomations(project, ticket, ChangeContext{ColumnID: "notes", NewValue: "hi"}, false)
	assert.Empty(t, result.AssigneeID)

	result = ApplyAutomations(project, ticket, ChangeContext{ColumnID: "status", NewValue: "Done"}, false)
	assert.Equal(t, "u2", result.AssigneeID)

	result = ApplyAutomations(project, ticket, ChangeContext{ColumnID: "status", NewValue: "To Do"}, false)
	assert.Empty(t, result.AssigneeID)
}

func TestApplyAutomations_UpdateField(t *testing.T) {
	project := automationProject(database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "Done",
		ActionType: database.ActionUpdateField, ActionTargetID: "notes", ActionValue: "closed",
	})

	ticket := database.Ticket{ID: "t1", Data: map[string]any{"status": "Done", "notes": "open"}}

	result := ApplyAutomations(project, ticket, ChangeContext{ColumnID: "status", NewValue: "Done"}, false)
	assert.Equal(t, "closed", result.Data["notes"])

	// The input ticket's map is untouched.
	assert.Equal(t, "open", ticket.Data["notes"])
}

func TestApplyAutomations_MalformedRuleSkipped(t *testing.T) {
	// UPDATE_FIELD without a value does nothing and raises nothing.
	project := automationProject(database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "Done",
		ActionType: database.ActionUpdateField, ActionTargetID: "notes",
	})

	ticket := database.Ticket{ID: "t1", Data: map[string]any{"status": "Done"}}
	result := ApplyAutomations(project, ticket, ChangeContext{ColumnID: "status", NewValue: "Done"}, false)
	assert.Equal(t, ticket, result)
}

func TestApplyAutomations_InactiveRuleSkipped(t *testing.T) {
	project := automationProject(database.AutomationRule{
		ID: "r1", Active: false,
		TriggerColumnID: "status", TriggerValue: "Done",
		ActionType: database.ActionAssignUser, ActionTargetID: "u2",
	})

	ticket := database.Ticket{ID: "t1", Data: map[string]any{"status": "Done"}}
	result := ApplyAutomations(project, ticket, ChangeContext{}, true)
	assert.Empty(t, result.AssigneeID)
}

func TestApplyAutomations_CompleteChecklistIdempotent(t *testing.T) {
	project := automationProject(database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "Done",
		ActionType: database.ActionCompleteChecklist,
	})

	ticket := database.Ticket{
		ID:   "t1",
		Data: map[string]any{"status": "Done"},
		Checklists: []database.ChecklistItem{
			{ID: "c1", Text: "first", Done: false},
			{ID: "c2", Text: "second", Done: true},
		},
	}

	once := ApplyAutomations(project, ticket, ChangeContext{ColumnID: "status", NewValue: "Done"}, false)
	twice := ApplyAutomations(project, once, ChangeContext{ColumnID: "status", NewValue: "Done"}, false)

	for _, c := range once.Checklists {
		assert.True(t, c.Done)
	}
	assert.Equal(t, once.Checklists, twice.Checklists)

	// Input checklist untouched.
	assert.False(t, ticket.Checklists[0].Done)
}

func TestApplyAutomations_RulesApplyInOrder(t *testing.T) {
	project := automationProject(
		database.AutomationRule{
			ID: "r1", Active: true, TriggerColumnID: "status", TriggerValue: "Done",
			ActionType: database.ActionUpdateField, ActionTargetID: "notes", ActionValue: "first",
		},
		database.AutomationRule{
			ID: "r2", Active: true, TriggerColumnID: "status", TriggerValue: "Done",
			ActionType: database.ActionUpdateField, ActionTargetID: "notes", ActionValue: "second",
		},
	)

	ticket := database.Ticket{ID: "t1", Data: map[string]any{"status": "Done"}}
	result := ApplyAutomations(project, ticket, ChangeContext{ColumnID: "status", NewValue: "Done"}, false)
	assert.Equal(t, "second", result.Data["notes"])
}

func TestNotifyRulesNeverFireInGenericPass(t *testing.T) {
	notify := database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "Done",
		ActionType: database.ActionNotifyUser, ActionTargetID: "u2",
	}
	project := automationProject(notify)

	ticket := database.Ticket{ID: "t1", Data: map[string]any{"status": "Done"}}

	// The generic loop leaves the ticket alone...
	result := ApplyAutomations(project, ticket, ChangeContext{ColumnID: "status", NewValue: "Done"}, false)
	assert.Equal(t, ticket, result)

	// ...and the second pass picks the rule up.
	matched := NotifyRules(project, "status", "Done")
	require.Len(t, matched, 1)
	assert.Equal(t, "r1", matched[0].ID)

	assert.Empty(t, NotifyRules(project, "status", "To Do"))
	assert.Empty(t, NotifyRules(project, "notes", "Done"))
}

func TestNotifyRules_EmptyTriggerValueMatchesAnyChange(t *testing.T) {
	project := automationProject(database.AutomationRule{
		ID: "r1", Active: true,
		TriggerColumnID: "status", TriggerValue: "",
		ActionType: database.ActionNotifyUser, ActionTargetID: "u2",
	})

	assert.Len(t, NotifyRules(project, "status", "anything"), 1)
	assert.Empty(t, NotifyRules(project, "notes", "anything"))
}

func TestSystemComment(t *testing.T) {
	target := &database.User{ID: "u2", Username: "maria"}
	comment := SystemComment(target, "Done")

	assert.Equal(t, "system", comment.UserID)
	assert.Contains(t, comment.Text, "@maria")
	assert.Contains(t, comment.Text, "Done")
	assert.NotEmpty(t, comment.CreatedAt)
}
