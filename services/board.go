package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pworkhq/portal/database"
)

// Pseudo-columns accepted in board filters. Both match against the legacy
// assignee field or any person-typed column.
const (
	FilterAssigneeAny = "assignee_any"
	FilterMemberAny   = "member_any"
)

// Group id and label for tickets whose status value matches no option, and
// for boards without a status column.
const (
	GroupNoStatus = "undefined"
	GroupAll      = "all"
)

// Filter is one column/value pair. Filters are conjunctive: an item must
// match all of them.
type Filter struct {
	ColumnID string `json:"columnId"`
	Value    string `json:"value"`
}

// SortSpec is a single-column sort. Missing cell values sort as empty
// strings.
type SortSpec struct {
	ColumnID string `json:"columnId"`
	Desc     bool   `json:"desc"`
}

// KanbanGroup is one rendered kanban lane: a status option, the trailing
// "no status" bucket, or the single catch-all lane when the board has no
// status column.
type KanbanGroup struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	Color    string            `json:"color"`
	OptionID string            `json:"optionId,omitempty"`
	Items    []database.Ticket `json:"items"`
}

// FilterItems returns the project's live items narrowed by search text and
// active filters. Archived items are dropped first; search matches title or
// description case-insensitively; filters are ANDed.
func FilterItems(project *database.Project, search string, filters []Filter) []database.Ticket {
	items := make([]database.Ticket, 0, len(project.Items))
	for _, item := range project.Items {
		if !item.Archived {
			items = append(items, item)
		}
	}

	if search != "" {
		lower := strings.ToLower(search)
		matched := items[:0]
		for _, item := range items {
			if strings.Contains(strings.ToLower(item.Title), lower) ||
				strings.Contains(strings.ToLower(item.Description), lower) {
				matched = append(matched, item)
			}
		}
		items = matched
	}

	if len(filters) > 0 {
		matched := items[:0]
		for _, item := range items {
			if matchesAll(project, item, filters) {
				matched = append(matched, item)
			}
		}
		items = matched
	}

	return items
}

func matchesAll(project *database.Project, item database.Ticket, filters []Filter) bool {
	for _, f := range filters {
		if !matchesFilter(project, item, f) {
			return false
		}
	}
	return true
}

func matchesFilter(project *database.Project, item database.Ticket, f Filter) bool {
	if f.ColumnID == FilterAssigneeAny || f.ColumnID == FilterMemberAny {
		if item.AssigneeID == f.Value {
			return true
		}
		for _, col := range project.Columns {
			if col.Type != database.ColumnPerson {
				continue
			}
			if cellContains(item.Data[col.ID], f.Value) {
				return true
			}
		}
		return false
	}

	val := item.Data[f.ColumnID]
	if list, ok := val.([]any); ok {
		for _, v := range list {
			if looseEquals(v, f.Value) {
				return true
			}
		}
		return false
	}
	return looseEquals(val, f.Value)
}

// cellContains checks a person cell (scalar user id or list of ids) for a
// user id.
func cellContains(val any, userID string) bool {
	switch v := val.(type) {
	case string:
		return v == userID
	case []any:
		for _, entry := range v {
			if s, ok := entry.(string); ok && s == userID {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == userID {
				return true
			}
		}
	}
	return false
}

// looseEquals compares a cell value with a filter string the way the filter
// bar does: string values compare directly, numbers compare against their
// decimal rendering.
func looseEquals(val any, want string) bool {
	switch v := val.(type) {
	case string:
		return v == want
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64) == want
	case int:
		return strconv.Itoa(v) == want
	case bool:
		return strconv.FormatBool(v) == want
	}
	return false
}

// SortItems orders items by a single column, ascending or descending.
// Numeric cells compare numerically when both sides are numbers; everything
// else compares lexicographically with missing values as empty strings. The
// sort is stable so equal keys keep their board order.
func SortItems(items []database.Ticket, spec *SortSpec) []database.Ticket {
	if spec == nil || spec.ColumnID == "" {
		return items
	}

	sorted := make([]database.Ticket, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Data[spec.ColumnID], sorted[j].Data[spec.ColumnID]
		if spec.Desc {
			return cellLess(b, a)
		}
		return cellLess(a, b)
	})

	return sorted
}

func cellLess(a, b any) bool {
	if fa, aok := a.(float64); aok {
		if fb, bok := b.(float64); bok {
			return fa < fb
		}
	}
	return cellString(a) < cellString(b)
}

func cellString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// GroupByStatus derives the kanban lanes for a set of already filtered and
// sorted items. With a status column present there is one lane per option in
// declaration order plus a trailing "no status" lane; items are placed by
// matching their status cell against the option *label*. A cell holding a
// label that no option carries anymore (for example after an option rename)
// lands in the "no status" lane; stored cells are not rewritten on rename.
// Without a status column every item goes into a single unlabeled lane.
func GroupByStatus(project *database.Project, items []database.Ticket) []KanbanGroup {
	statusCol := project.StatusColumn()

	if statusCol == nil || len(statusCol.Options) == 0 {
		return []KanbanGroup{{
			ID:    GroupAll,
			Label: "All Tasks",
			Color: "#e5e7eb",
			Items: items,
		}}
	}

	groups := make([]KanbanGroup, 0, len(statusCol.Options)+1)
	index := make(map[string]int, len(statusCol.Options))
	for _, opt := range statusCol.Options {
		// First option wins when two options share a label.
		if _, seen := index[opt.Label]; !seen {
			index[opt.Label] = len(groups)
		}
		groups = append(groups, KanbanGroup{
			ID:       opt.ID,
			Label:    opt.Label,
			Color:    opt.Color,
			OptionID: opt.ID,
			Items:    []database.Ticket{},
		})
	}
	groups = append(groups, KanbanGroup{
		ID:    GroupNoStatus,
		Label: "No Status",
		Color: "#e5e7eb",
		Items: []database.Ticket{},
	})
	noStatus := len(groups) - 1

	for _, item := range items {
		label, _ := item.Data[statusCol.ID].(string)
		if gi, ok := index[label]; ok {
			groups[gi].Items = append(groups[gi].Items, item)
		} else {
			groups[noStatus].Items = append(groups[noStatus].Items, item)
		}
	}

	return groups
}
