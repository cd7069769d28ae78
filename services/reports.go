package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pworkhq/portal/database"
)

// Activity entry types.
const (
	ActivityTaskAssigned = "task_assigned"
	ActivityComment      = "comment"
)

// ActivityEntry is one derived activity-log row. The log is never persisted;
// it is recomputed from projects on every request.
type ActivityEntry struct {
	ID     string `json:"id"`
	Date   string `json:"date"` // YYYY-MM-DD
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

// ActivityLog derives the activity entries from the projects: one
// task_assigned entry per unique assignee per ticket dated by the ticket's
// start date, and one comment entry per stored comment dated by its creation
// timestamp. Archived tickets are skipped. Entries come back date-ordered.
func ActivityLog(projects []database.Project) []ActivityEntry {
	var logs []ActivityEntry

	for _, p := range projects {
		var personCols []string
		for _, c := range p.Columns {
			if c.Type == database.ColumnPerson {
				personCols = append(personCols, c.ID)
			}
		}

		for _, t := range p.Items {
			if t.Archived {
				continue
			}

			if t.StartDate != "" {
				seen := map[string]bool{}
				var assigned []string
				add := func(uid string) {
					if uid != "" && !seen[uid] {
						seen[uid] = true
						assigned = append(assigned, uid)
					}
				}

				add(t.AssigneeID)
				for _, colID := range personCols {
					switch val := t.Data[colID].(type) {
					case string:
						add(val)
					case []any:
						for _, v := range val {
							if s, ok := v.(string); ok {
								add(s)
							}
						}
					}
				}

				for _, uid := range assigned {
					logs = append(logs, ActivityEntry{
						ID:     fmt.Sprintf("task_%s_%s", t.ID, uid),
						Date:   t.StartDate,
						UserID: uid,
						Type:   ActivityTaskAssigned,
					})
				}
			}

			for _, c := range t.Comments {
				date := c.CreatedAt
				if idx := strings.Index(date, "T"); idx > 0 {
					date = date[:idx]
				}
				logs = append(logs, ActivityEntry{
					ID:     "comment_" + c.ID,
					Date:   date,
					UserID: c.UserID,
					Type:   ActivityComment,
				})
			}
		}
	}

	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	return logs
}

// FilterActivity narrows the log to an inclusive date range and optionally a
// single user ("all" or empty keeps everyone).
func FilterActivity(logs []ActivityEntry, startDate, endDate, userID string) []ActivityEntry {
	filtered := []ActivityEntry{}
	for _, l := range logs {
		if l.Date < startDate || l.Date > endDate {
			continue
		}
		if userID != "" && userID != "all" && l.UserID != userID {
			continue
		}
		filtered = append(filtered, l)
	}
	return filtered
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type UserActivity struct {
	User  database.User `json:"user"`
	Count int           `json:"count"`
}

// ActivitySummary carries the KPIs for a filtered activity log.
type ActivitySummary struct {
	TotalInteractions int            `json:"totalInteractions"`
	ActiveUsers       int            `json:"activeUsers"`
	TasksAssigned     int            `json:"tasksAssigned"`
	Comments          int            `json:"comments"`
	Daily             []DailyCount   `json:"daily"`
	TopUsers          []UserActivity `json:"topUsers"`
}

// Summarize computes the report KPIs over an already-filtered activity log:
// totals, unique active users, per-type counts, a daily histogram covering
// the inclusive date range, and the top five users by entry count.
func Summarize(logs []ActivityEntry, users []database.User, startDate, endDate string) ActivitySummary {
	summary := ActivitySummary{TotalInteractions: len(logs)}

	unique := map[string]bool{}
	perUser := map[string]int{}
	var userOrder []string
	for _, l := range logs {
		if !unique[l.UserID] {
			unique[l.UserID] = true
			userOrder = append(userOrder, l.UserID)
		}
		perUser[l.UserID]++
		switch l.Type {
		case ActivityTaskAssigned:
			summary.TasksAssigned++
		case ActivityComment:
			summary.Comments++
		}
	}
	summary.ActiveUsers = len(unique)

	summary.Daily = dailyHistogram(logs, startDate, endDate)

	for _, uid := range userOrder {
		user := findUser(users, uid)
		if user == nil {
			continue
		}
		summary.TopUsers = append(summary.TopUsers, UserActivity{User: *user, Count: perUser[uid]})
	}
	sort.SliceStable(summary.TopUsers, func(i, j int) bool {
		return summary.TopUsers[i].Count > summary.TopUsers[j].Count
	})
	if len(summary.TopUsers) > 5 {
		summary.TopUsers = summary.TopUsers[:5]
	}

	return summary
}

// dailyHistogram initializes every day in the inclusive range to zero, then
// counts entries per day. Entries outside the range are ignored.
func dailyHistogram(logs []ActivityEntry, startDate, endDate string) []DailyCount {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil
	}

	var daily []DailyCount
	index := map[string]int{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		index[key] = len(daily)
		daily = append(daily, DailyCount{Date: key})
	}

	for _, l := range logs {
		if i, ok := index[l.Date]; ok {
			daily[i].Count++
		}
	}

	return daily
}

func findUser(users []database.User, id string) *database.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

// Chart labels for cells that are empty or hold several values.
const (
	chartLabelEmpty    = "Empty"
	chartLabelMultiple = "Multiple"
	chartLabelUnknown  = "Unknown"
)

var chartFallbackColors = []string{
	"#6366f1", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899", "#06b6d4",
}

// ChartSlice is one entry of the custom chart dataset.
type ChartSlice struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// ChartData groups a project's items by a column's value and computes
// percentage shares. Person cells are mapped from user id to display name;
// list cells collapse to "Multiple"; empty cells count under "Empty". Colors
// come from the column's options when a label matches one, otherwise from a
// fixed fallback palette by first-seen position. The result is ordered by
// count descending with first-seen order breaking ties, so gradients and
// tests are reproducible.
func ChartData(project *database.Project, columnID string, users []database.User) []ChartSlice {
	var col *database.BoardColumn
	for i := range project.Columns {
		if project.Columns[i].ID == columnID {
			col = &project.Columns[i]
			break
		}
	}
	if col == nil {
		return []ChartSlice{}
	}

	counts := map[string]int{}
	var order []string
	total := 0

	for _, item := range project.Items {
		label := chartLabel(col, item.Data[columnID], users)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
		total++
	}

	slices := make([]ChartSlice, 0, len(order))
	for i, label := range order {
		color := chartFallbackColors[i%len(chartFallbackColors)]
		for _, opt := range col.Options {
			if opt.Label == label {
				color = opt.Color
				break
			}
		}

		pct := 0.0
		if total > 0 {
			pct = float64(counts[label]) / float64(total) * 100
		}

		slices = append(slices, ChartSlice{
			Label:      label,
			Count:      counts[label],
			Percentage: pct,
			Color:      color,
		})
	}

	sort.SliceStable(slices, func(i, j int) bool { return slices[i].Count > slices[j].Count })
	return slices
}

func chartLabel(col *database.BoardColumn, val any, users []database.User) string {
	if list, ok := val.([]any); ok {
		if len(list) > 0 {
			return chartLabelMultiple
		}
		return chartLabelEmpty
	}

	s, _ := val.(string)
	if s == "" {
		return chartLabelEmpty
	}

	if col.Type == database.ColumnPerson {
		if u := findUser(users, s); u != nil {
			return u.Name
		}
		return chartLabelUnknown
	}

	return s
}

// GradientStop is one segment of the conic gradient: a color spanning
// [From, To] degrees.
type GradientStop struct {
	Color string  `json:"color"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
}

// ConicGradientStops allocates each slice's angle as percentage/100*360 with
// the offset carried across entries in dataset order. When percentages sum
// to 100 the stops cover the full 360 degrees.
func ConicGradientStops(data []ChartSlice) []GradientStop {
	stops := make([]GradientStop, 0, len(data))
	current := 0.0
	for _, d := range data {
		deg := d.Percentage / 100 * 360
		stops = append(stops, GradientStop{Color: d.Color, From: current, To: current + deg})
		current += deg
	}
	return stops
}

// ConicGradientCSS renders the stops as a CSS conic-gradient value for the
// pie and donut charts.
func ConicGradientCSS(data []ChartSlice) string {
	var b strings.Builder
	b.WriteString("conic-gradient(")
	for i, stop := range ConicGradientStops(data) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %.4fdeg %.4fdeg", stop.Color, stop.From, stop.To)
	}
	b.WriteString(")")
	return b.String()
}

// ChartCSV renders the chart dataset as CSV with quoted text fields.
func ChartCSV(data []ChartSlice) []byte {
	var b strings.Builder
	b.WriteString("\"Label\",\"Count\",\"Percentage\"\n")
	for _, d := range data {
		label := strings.ReplaceAll(d.Label, `"`, `""`)
		fmt.Fprintf(&b, "\"%s\",%d,\"%.2f%%\"\n", label, d.Count, d.Percentage)
	}
	return []byte(b.String())
}
