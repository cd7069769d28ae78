package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// ReportHandler serves the derived reporting views. Nothing here is
// persisted; every request recomputes from the project documents.
type ReportHandler struct {
	store *database.Store
}

func NewReportHandler(store *database.Store) *ReportHandler {
	return &ReportHandler{store: store}
}

// Activity returns the KPIs, the daily histogram and the top-users ranking
// for a date range. Defaults to the last 30 days and all users.
func (h *ReportHandler) Activity(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects()
	if err != nil {
		log.Printf("Error listing projects: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	users, err := h.store.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	endDate := query.Get("endDate")
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}
	startDate := query.Get("startDate")
	if startDate == "" {
		startDate = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}

	logs := services.ActivityLog(projects)
	filtered := services.FilterActivity(logs, startDate, endDate, query.Get("userId"))
	summary := services.Summarize(filtered, users, startDate, endDate)

	writeJSON(w, http.StatusOK, map[string]any{
		"startDate": startDate,
		"endDate":   endDate,
		"summary":   summary,
		"entries":   filtered,
	})
}

// Chart groups a project's items by a column and returns the percentage
// shares together with the conic-gradient stops for pie/donut rendering.
func (h *ReportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	data, project, ok := h.chartData(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projectId": project.ID,
		"data":      data,
		"gradient":  services.ConicGradientStops(data),
		"css":       services.ConicGradientCSS(data),
	})
}

// ChartCSV exports the chart dataset as a CSV download.
func (h *ReportHandler) ChartCSV(w http.ResponseWriter, r *http.Request) {
	data, project, ok := h.chartData(w, r)
	if !ok {
		return
	}

	filename := strings.ToLower(strings.ReplaceAll(project.Title, " ", "_"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report_%s.csv", filename))
	w.Write(services.ChartCSV(data))
}

func (h *ReportHandler) chartData(w http.ResponseWriter, r *http.Request) ([]services.ChartSlice, *database.Project, bool) {
	query := r.URL.Query()

	project, err := h.store.GetProject(query.Get("projectId"))
	if err != nil {
		log.Printf("Error loading project: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return nil, nil, false
	}
	if project == nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return nil, nil, false
	}

	columnID := query.Get("columnId")
	if columnID == "" {
		// Pick the first chartable column, same as the report screen does.
		for _, c := range project.Columns {
			switch c.Type {
			case database.ColumnStatus, database.ColumnPriority, database.ColumnDropdown, database.ColumnPerson:
				columnID = c.ID
			}
			if columnID != "" {
				break
			}
		}
	}
	if columnID == "" {
		http.Error(w, "no chartable column", http.StatusBadRequest)
		return nil, nil, false
	}

	users, err := h.store.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return nil, nil, false
	}

	return services.ChartData(project, columnID, users), project, true
}
