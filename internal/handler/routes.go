package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/service"
)

// RoutesHandler serves the route pages and the activities run on them.
type RoutesHandler struct {
	routes *service.RouteService
	render *Renderer
	logger *slog.Logger
}

func NewRoutesHandler(routes *service.RouteService, render *Renderer, logger *slog.Logger) *RoutesHandler {
	return &RoutesHandler{routes: routes, render: render, logger: logger}
}

// List renders the user's routes.
//
// HTTP: GET /routes
func (h *RoutesHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routes.Routes(r.Context(), currentUser(r))
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "routes", Page{
		Title: "Routes",
		Data: struct {
			Headers []string
			Rows    []fitness.RouteRow
		}{fitness.RoutesHeaders, fitness.RouteRows(routes)},
	})
}

// HTTP: GET /routes/add
func (h *RoutesHandler) ShowAdd(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "route_form", Page{Title: "Add route", Data: routeForm{}})
}

// Add records a route.
//
// HTTP: POST /routes/add
func (h *RoutesHandler) Add(w http.ResponseWriter, r *http.Request) {
	form := readRouteForm(r)
	v, err := parseFloats(r, "distance", "height")
	if err == nil {
		_, err = h.routes.AddRoute(r.Context(), currentUser(r), form.Name, v[0], v[1])
	}
	if err != nil {
		renderForm(h.render, h.logger, w, r, "route_form", "Add route", form, err)
		return
	}
	seeOther(w, r, "/routes")
}

// Delete removes a route and its activities.
//
// HTTP: POST /routes/{route}/delete
func (h *RoutesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.routes.DeleteRoute(r.Context(), currentUser(r), chi.URLParam(r, "route")); err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}
	seeOther(w, r, "/routes")
}

type activityTable struct {
	Headers []string
	Rows    []fitness.ActivityRow
}

func newActivityTable(activities []model.Activity) activityTable {
	return activityTable{Headers: fitness.ActivitiesHeaders, Rows: fitness.ActivityRows(activities)}
}

// activityCharts builds the pace and speed series of activities.
func activityCharts(activities []model.Activity) (pace, speed fitness.Chart) {
	pacePoints := make([]model.Datapoint, 0, len(activities))
	speedPoints := make([]model.Datapoint, 0, len(activities))
	for _, a := range activities {
		pacePoints = append(pacePoints, model.Datapoint{Date: a.Date, Value: a.Pace})
		speedPoints = append(speedPoints, model.Datapoint{Date: a.Date, Value: a.Speed})
	}
	return fitness.NewChart("Pace", "min/km", pacePoints, 1),
		fitness.NewChart("Speed", "km/h", speedPoints, 1)
}

// Activities renders all activities, or those of one route, with pace and
// speed charts. A malformed route name renders an empty table.
//
// HTTP: GET /activities, GET /activities/{route}
func (h *RoutesHandler) Activities(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	activities, err := h.routes.Activities(r.Context(), currentUser(r), route)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	title := "Activities"
	if route != "" {
		title = "Activities on " + route
	}
	pace, speed := activityCharts(activities)
	h.render.Render(w, r, http.StatusOK, "activities", Page{
		Title: title,
		Data: struct {
			Route string
			Table activityTable
			Pace  fitness.Chart
			Speed fitness.Chart
		}{route, newActivityTable(activities), pace, speed},
	})
}

// ShowAddActivity renders the activity form with a route picker.
//
// HTTP: GET /activities/add
func (h *RoutesHandler) ShowAddActivity(w http.ResponseWriter, r *http.Request) {
	form := activityForm{Route: r.URL.Query().Get("route")}
	if err := h.fillRouteChoices(r, &form); err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "activity_form", Page{Title: "Log activity", Data: form})
}

// AddActivity derives pace and speed and records the activity.
//
// HTTP: POST /activities/add
func (h *RoutesHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	form := readActivityForm(r)
	in, err := parseActivityInput(form)
	if err == nil {
		_, err = h.routes.AddActivity(r.Context(), currentUser(r), in)
	}
	if err != nil {
		if fillErr := h.fillRouteChoices(r, &form); fillErr != nil {
			renderError(h.render, h.logger, w, r, fillErr)
			return
		}
		renderForm(h.render, h.logger, w, r, "activity_form", "Log activity", form, err)
		return
	}
	seeOther(w, r, "/activities/"+in.RouteName)
}

func (h *RoutesHandler) fillRouteChoices(r *http.Request, form *activityForm) error {
	routes, err := h.routes.Routes(r.Context(), currentUser(r))
	if err != nil {
		return err
	}
	form.Routes = make([]string, 0, len(routes))
	for _, rt := range routes {
		form.Routes = append(form.Routes, rt.Name)
	}
	return nil
}
