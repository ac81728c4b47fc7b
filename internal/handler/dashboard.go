package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/service"
)

// recentActivities is how many activities the dashboard lists.
const recentActivities = 5

// DashboardHandler serves the home page.
type DashboardHandler struct {
	stats  *service.StatService
	routes *service.RouteService
	render *Renderer
	now    func() time.Time
	logger *slog.Logger
}

func NewDashboardHandler(stats *service.StatService, routes *service.RouteService, render *Renderer, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{stats: stats, routes: routes, render: render, now: time.Now, logger: logger}
}

type dashboardPage struct {
	StatsHeaders []string
	Latest       *fitness.StatRow
	LastEntry    string
	Weight       fitness.Chart
	Activities   activityTable
}

// Home renders the latest entry, the weight chart and the most recent
// activities.
//
// HTTP: GET /
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	stats, err := h.stats.Stats(r.Context(), user)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}
	activities, err := h.routes.Activities(r.Context(), user, "")
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	page := dashboardPage{StatsHeaders: fitness.StatsHeaders}

	weights := make([]model.Datapoint, 0, len(stats))
	for _, s := range stats {
		weights = append(weights, model.Datapoint{Date: s.Date, Value: s.Weight})
	}
	page.Weight = fitness.NewChart(model.CategoryWeight.Label(), model.CategoryWeight.Unit(), weights, model.CategoryWeight.Margin())

	if n := len(stats); n > 0 {
		rows := fitness.StatRows(stats[n-1:])
		page.Latest = &rows[0]
		page.LastEntry = fitness.Ago(stats[n-1].Date, h.now())
	}

	if n := len(activities); n > recentActivities {
		activities = activities[n-recentActivities:]
	}
	// Newest first.
	for i, j := 0, len(activities)-1; i < j; i, j = i+1, j-1 {
		activities[i], activities[j] = activities[j], activities[i]
	}
	page.Activities = newActivityTable(activities)

	h.render.Render(w, r, http.StatusOK, "dashboard", Page{Title: "Dashboard", Data: page})
}
