package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pworkhq/portal/database"
)

func reportUsers() []database.User {
	return []database.User{
		{ID: "u1", Username: "ana", Name: "Ana"},
		{ID: "u2", Username: "ben", Name: "Ben"},
		{ID: "u3", Username: "cara", Name: "Cara"},
	}
}

func reportProjects() []database.Project {
	return []database.Project{{
		ID: "p1",
		Columns: []database.BoardColumn{
			{ID: "status", Title: "Status", Type: database.ColumnStatus, Options: []database.ColumnOption{
				{ID: "o1", Label: "To Do", Color: "#9ca3af"},
				{ID: "o2", Label: "Done", Color: "#4ade80"},
			}},
			{ID: "owners", Title: "Owners", Type: database.ColumnPerson},
		},
		Items: []database.Ticket{
			{
				ID:         "t1",
				AssigneeID: "u1",
				StartDate:  "2024-05-10",
				// u1 appears both as legacy assignee and in the person
				// column; it must count once.
				Data: map[string]any{"status": "Done", "owners": []any{"u1", "u2"}},
				Comments: []database.Comment{
					{ID: "c1", UserID: "u2", Text: "on it", CreatedAt: "2024-05-11T09:30:00Z"},
					{ID: "c2", UserID: "u1", Text: "done", CreatedAt: "2024-05-12T10:00:00Z"},
				},
			},
			{
				ID:         "t2",
				AssigneeID: "u3",
				StartDate:  "2024-05-12",
				Data:       map[string]any{"status": "To Do"},
			},
			{
				ID:         "t3",
				AssigneeID: "u1",
				StartDate:  "2024-05-13",
				Archived:   true,
				Data:       map[string]any{"status": "Done"},
			},
			{
				ID:   "t4",
				Data: map[string]any{"status": "To Do"},
			},
		},
	}}
}

func TestActivityLog(t *testing.T) {
	logs := ActivityLog(reportProjects())

	// t1 yields u1 and u2 assignments (dedup across assignee and person
	// column) plus two comments; t2 yields one assignment; t3 is archived
	// and t4 has no start date.
	require.Len(t, logs, 5)

	byType := map[string]int{}
	for _, l := range logs {
		byType[l.Type]++
	}
	assert.Equal(t, 3, byType[ActivityTaskAssigned])
	assert.Equal(t, 2, byType[ActivityComment])

	// Date-ordered.
	for i := 1; i < len(logs); i++ {
		assert.LessOrEqual(t, logs[i-1].Date, logs[i].Date)
	}

	// Comment dates keep only the date part.
	for _, l := range logs {
		if l.Type == ActivityComment {
			assert.NotContains(t, l.Date, "T")
		}
	}
}

func TestFilterActivity(t *testing.T) {
	logs := ActivityLog(reportProjects())

	// Inclusive range: entries on both boundary dates stay.
	inRange := FilterActivity(logs, "2024-05-10", "2024-05-11", "")
	require.Len(t, inRange, 3)

	justAna := FilterActivity(logs, "2024-05-01", "2024-05-31", "u1")
	require.Len(t, justAna, 2)
	for _, l := range justAna {
		assert.Equal(t, "u1", l.UserID)
	}

	// "all" behaves like no user filter.
	assert.Len(t, FilterActivity(logs, "2024-05-01", "2024-05-31", "all"), 5)
}

func TestSummarize(t *testing.T) {
	logs := ActivityLog(reportProjects())
	summary := Summarize(logs, reportUsers(), "2024-05-10", "2024-05-13")

	assert.Equal(t, 5, summary.TotalInteractions)
	assert.Equal(t, 3, summary.ActiveUsers)
	assert.Equal(t, 3, summary.TasksAssigned)
	assert.Equal(t, 2, summary.Comments)

	// Histogram covers every day in the inclusive range, zeros included.
	require.Len(t, summary.Daily, 4)
	assert.Equal(t, "2024-05-10", summary.Daily[0].Date)
	assert.Equal(t, "2024-05-13", summary.Daily[3].Date)
	total := 0
	for _, d := range summary.Daily {
		total += d.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 0, summary.Daily[3].Count)

	// u1: assignment + comment = 2; u2: assignment + comment = 2;
	// u3: assignment = 1. Ties keep first-seen order.
	require.Len(t, summary.TopUsers, 3)
	assert.Equal(t, "u1", summary.TopUsers[0].User.ID)
	assert.Equal(t, 2, summary.TopUsers[0].Count)
	assert.Equal(t, "u2", summary.TopUsers[1].User.ID)
	assert.Equal(t, "u3", summary.TopUsers[2].User.ID)
	assert.Equal(t, 1, summary.TopUsers[2].Count)
}

func TestSummarize_TopUsersCapAtFive(t *testing.T) {
	var logs []ActivityEntry
	var users []database.User
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		users = append(users, database.User{ID: id, Name: id})
		// Give earlier users more entries.
		for j := 0; j < 7-i; j++ {
			logs = append(logs, ActivityEntry{Date: "2024-05-10", UserID: id, Type: ActivityComment})
		}
	}

	summary := Summarize(logs, users, "2024-05-10", "2024-05-10")
	require.Len(t, summary.TopUsers, 5)
	assert.Equal(t, "a", summary.TopUsers[0].User.ID)
	assert.Equal(t, 7, summary.TopUsers[0].Count)
}

func TestChartData(t *testing.T) {
	project := &reportProjects()[0]
	data := ChartData(project, "status", reportUsers())

	// To Do: t2 + t4; Done: t1 + t3 (charts include archived items).
	require.Len(t, data, 2)
	assert.Equal(t, "Done", data[0].Label)
	assert.Equal(t, 2, data[0].Count)
	assert.Equal(t, "#4ade80", data[0].Color)
	assert.Equal(t, "To Do", data[1].Label)
	assert.InDelta(t, 50.0, data[0].Percentage, 0.001)

	sum := 0.0
	for _, d := range data {
		sum += d.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.001)
}

func TestChartData_PersonColumn(t *testing.T) {
	project := &reportProjects()[0]
	data := ChartData(project, "owners", reportUsers())

	labels := map[string]int{}
	for _, d := range data {
		labels[d.Label] = d.Count
	}
	// t1's list cell collapses to Multiple; the rest are empty.
	assert.Equal(t, 1, labels[chartLabelMultiple])
	assert.Equal(t, 3, labels[chartLabelEmpty])
}

func TestChartData_UnknownColumn(t *testing.T) {
	project := &reportProjects()[0]
	assert.Empty(t, ChartData(project, "missing", reportUsers()))
}

func TestConicGradientStops(t *testing.T) {
	data := []ChartSlice{
		{Label: "Done", Count: 2, Percentage: 50, Color: "#4ade80"},
		{Label: "To Do", Count: 1, Percentage: 25, Color: "#9ca3af"},
		{Label: "Empty", Count: 1, Percentage: 25, Color: "#6366f1"},
	}

	stops := ConicGradientStops(data)
	require.Len(t, stops, 3)
	assert.Equal(t, 0.0, stops[0].From)
	assert.InDelta(t, 180.0, stops[0].To, 0.001)
	assert.InDelta(t, 180.0, stops[1].From, 0.001)
	assert.InDelta(t, 270.0, stops[1].To, 0.001)

	// Percentages summing to 100 cover the full circle.
	assert.InDelta(t, 360.0, stops[2].To, 0.001)

	css := ConicGradientCSS(data)
	assert.True(t, strings.HasPrefix(css, "conic-gradient("))
	assert.Contains(t, css, "#4ade80 0.0000deg 180.0000deg")
}

func TestChartCSV(t *testing.T) {
	data := []ChartSlice{
		{Label: `He said "go"`, Count: 3, Percentage: 75},
		{Label: "Rest", Count: 1, Percentage: 25},
	}

	csv := string(ChartCSV(data))
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Label","Count","Percentage"`, lines[0])
	assert.Equal(t, `"He said ""go""",3,"75.00%"`, lines[1])
	assert.Equal(t, `"Rest",1,"25.00%"`, lines[2])
}
