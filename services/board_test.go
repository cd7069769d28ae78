package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pworkhq/portal/database"
)

func boardProject() *database.Project {
	return &database.Project{
		ID: "p1",
		Columns: []database.BoardColumn{
			{ID: "status", Title: "Status", Type: database.ColumnStatus, Options: []database.ColumnOption{
				{ID: "o1", Label: "To Do", Color: "#9ca3af"},
				{ID: "o2", Label: "Done", Color: "#4ade80"},
			}},
			{ID: "owners", Title: "Owners", Type: database.ColumnPerson},
			{ID: "effort", Title: "Effort", Type: database.ColumnNumber},
		},
		Groups: []database.BoardGroup{{ID: "g1", Title: "Sprint"}},
		Items: []database.Ticket{
			{ID: "t1", GroupID: "g1", Title: "Fix login page", Data: map[string]any{"status": "To Do", "effort": float64(3)}},
			{ID: "t2", GroupID: "g1", Title: "Ship reports", Description: "export as CSV", AssigneeID: "u1", Data: map[string]any{"status": "Done", "effort": float64(1)}},
			{ID: "t3", GroupID: "g1", Title: "Old cleanup", Archived: true, Data: map[string]any{"status": "Done"}},
			{ID: "t4", GroupID: "g1", Title: "Plan Q3", Data: map[string]any{"status": "Later", "owners": []any{"u2", "u3"}}},
		},
	}
}

func TestFilterItems_ExcludesArchived(t *testing.T) {
	items := FilterItems(boardProject(), "", nil)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.False(t, item.Archived)
	}
}

func TestFilterItems_SearchIsCaseInsensitive(t *testing.T) {
	project := boardProject()

	items := FilterItems(project, "LOGIN", nil)
	require.Len(t, items, 1)
	assert.Equal(t, "t1", items[0].ID)

	// Description matches too.
	items = FilterItems(project, "csv", nil)
	require.Len(t, items, 1)
	assert.Equal(t, "t2", items[0].ID)

	// Archived items never match even when the text does.
	assert.Empty(t, FilterItems(project, "cleanup", nil))
}

func TestFilterItems_FiltersAreConjunctive(t *testing.T) {
	project := boardProject()

	items := FilterItems(project, "", []Filter{{ColumnID: "status", Value: "Done"}})
	require.Len(t, items, 1)
	assert.Equal(t, "t2", items[0].ID)

	items = FilterItems(project, "", []Filter{
		{ColumnID: "status", Value: "Done"},
		{ColumnID: "effort", Value: "3"},
	})
	assert.Empty(t, items)
}

func TestFilterItems_NumberCellsMatchDecimalRendering(t *testing.T) {
	items := FilterItems(boardProject(), "", []Filter{{ColumnID: "effort", Value: "3"}})
	require.Len(t, items, 1)
	assert.Equal(t, "t1", items[0].ID)
}

func TestFilterItems_AssigneeAnyCoversPersonColumns(t *testing.T) {
	project := boardProject()

	// Legacy assignee field.
	items := FilterItems(project, "", []Filter{{ColumnID: FilterAssigneeAny, Value: "u1"}})
	require.Len(t, items, 1)
	assert.Equal(t, "t2", items[0].ID)

	// Value inside a person column's list cell.
	items = FilterItems(project, "", []Filter{{ColumnID: FilterAssigneeAny, Value: "u3"}})
	require.Len(t, items, 1)
	assert.Equal(t, "t4", items[0].ID)

	// member_any is an alias.
	items = FilterItems(project, "", []Filter{{ColumnID: FilterMemberAny, Value: "u3"}})
	require.Len(t, items, 1)
	assert.Equal(t, "t4", items[0].ID)

	assert.Empty(t, FilterItems(project, "", []Filter{{ColumnID: FilterAssigneeAny, Value: "nobody"}}))
}

func TestSortItems(t *testing.T) {
	items := []database.Ticket{
		{ID: "a", Data: map[string]any{"effort": float64(5)}},
		{ID: "b", Data: map[string]any{"effort": float64(2)}},
		{ID: "c", Data: map[string]any{}},
		{ID: "d", Data: map[string]any{"effort": float64(2)}},
	}

	asc := SortItems(items, &SortSpec{ColumnID: "effort"})
	ids := func(ts []database.Ticket) []string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = t.ID
		}
		return out
	}

	// Missing cells sort as empty strings, numbers compare numerically, and
	// the stable sort keeps b before d.
	assert.Equal(t, []string{"c", "b", "d", "a"}, ids(asc))

	desc := SortItems(items, &SortSpec{ColumnID: "effort", Desc: true})
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids(desc))

	// Input order untouched.
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(items))

	// Nil spec is a no-op.
	assert.Equal(t, items, SortItems(items, nil))
}

func TestGroupByStatus_LanesFollowOptionOrder(t *testing.T) {
	project := boardProject()
	items := FilterItems(project, "", nil)

	groups := GroupByStatus(project, items)
	require.Len(t, groups, 3)

	assert.Equal(t, "To Do", groups[0].Label)
	assert.Equal(t, "Done", groups[1].Label)
	assert.Equal(t, GroupNoStatus, groups[2].ID)
	assert.Equal(t, "No Status", groups[2].Label)

	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "t1", groups[0].Items[0].ID)
	require.Len(t, groups[1].Items, 1)
	assert.Equal(t, "t2", groups[1].Items[0].ID)

	// "Later" is not an option label, so t4 falls into the last lane.
	require.Len(t, groups[2].Items, 1)
	assert.Equal(t, "t4", groups[2].Items[0].ID)
}

func TestGroupByStatus_RenamedOptionOrphansItems(t *testing.T) {
	project := boardProject()
	// Rename "Done" to "Complete" without rewriting stored cells.
	project.Columns[0].Options[1].Label = "Complete"

	groups := GroupByStatus(project, FilterItems(project, "", nil))
	require.Len(t, groups, 3)

	assert.Equal(t, "Complete", groups[1].Label)
	assert.Empty(t, groups[1].Items)

	// t2 still holds "Done" and lands in the no-status lane with t4.
	require.Len(t, groups[2].Items, 2)
	assert.Equal(t, "t2", groups[2].Items[0].ID)
	assert.Equal(t, "t4", groups[2].Items[1].ID)
}

func TestGroupByStatus_PartitionsItems(t *testing.T) {
	project := boardProject()
	items := FilterItems(project, "", nil)

	groups := GroupByStatus(project, items)
	total := 0
	seen := map[string]bool{}
	for _, g := range groups {
		for _, item := range g.Items {
			assert.False(t, seen[item.ID], "item %s appears twice", item.ID)
			seen[item.ID] = true
			total++
		}
	}
	assert.Equal(t, len(items), total)
}

func TestGroupByStatus_NoStatusColumn(t *testing.T) {
	project := &database.Project{
		ID:      "p2",
		Columns: []database.BoardColumn{{ID: "notes", Title: "Notes", Type: database.ColumnText}},
		Items:   []database.Ticket{{ID: "t1"}, {ID: "t2"}},
	}

	groups := GroupByStatus(project, project.Items)
	require.Len(t, groups, 1)
	assert.Equal(t, GroupAll, groups[0].ID)
	assert.Equal(t, "All Tasks", groups[0].Label)
	assert.Len(t, groups[0].Items, 2)
}
