package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/service"
)

// currentUser returns the username of the authenticated session. Routes
// using it sit behind auth.RequireSession.
func currentUser(r *http.Request) string {
	sess, _ := auth.SessionFromContext(r.Context())
	if sess == nil {
		return ""
	}
	return sess.Username
}

// StatsHandler serves the body-composition pages under /stats.
type StatsHandler struct {
	stats  *service.StatService
	render *Renderer
	logger *slog.Logger
}

func NewStatsHandler(stats *service.StatService, render *Renderer, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, render: render, logger: logger}
}

type categoryLink struct {
	Name  string
	Label string
}

type statsPage struct {
	Headers    []string
	Rows       []fitness.StatRow
	Categories []categoryLink
}

// List renders the table of all entries.
//
// HTTP: GET /stats
func (h *StatsHandler) List(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context(), currentUser(r))
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	links := make([]categoryLink, 0, len(model.AllStatCategories))
	for _, c := range model.AllStatCategories {
		links = append(links, categoryLink{Name: string(c), Label: c.Label()})
	}

	h.render.Render(w, r, http.StatusOK, "stats", Page{
		Title: "Stats",
		Data: statsPage{
			Headers:    fitness.StatsHeaders,
			Rows:       fitness.StatRows(stats),
			Categories: links,
		},
	})
}

// Category renders the chart of one category. Unknown categories render an
// empty chart rather than an error.
//
// HTTP: GET /stats/{category}
func (h *StatsHandler) Category(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "category")
	points, err := h.stats.Category(r.Context(), currentUser(r), name)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	title, unit, margin := "Unknown category", "", 0.0
	if c, ok := model.ParseStatCategory(name); ok {
		title, unit, margin = c.Label(), c.Unit(), c.Margin()
	}

	h.render.Render(w, r, http.StatusOK, "stats_category", Page{
		Title: title,
		Data:  struct{ Chart fitness.Chart }{fitness.NewChart(title, unit, points, margin)},
	})
}

// ShowAdd renders the empty entry form.
//
// HTTP: GET /stats/add
func (h *StatsHandler) ShowAdd(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "stat_form", Page{Title: "Add stats", Data: statForm{Action: "/stats/add"}})
}

// Add records a new entry timestamped now.
//
// HTTP: POST /stats/add
func (h *StatsHandler) Add(w http.ResponseWriter, r *http.Request) {
	form := readStatForm(r, "/stats/add")
	v, err := parseStatValues(r)
	if err == nil {
		_, err = h.stats.AddStat(r.Context(), currentUser(r), v)
	}
	if err != nil {
		renderForm(h.render, h.logger, w, r, "stat_form", "Add stats", form, err)
		return
	}
	seeOther(w, r, "/stats")
}

// ShowEdit renders the form prefilled with the stored entry.
//
// HTTP: GET /stats/{date}/edit
func (h *StatsHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	date, err := epochParam(chi.URLParam(r, "date"))
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}
	entry, err := h.stats.Stat(r.Context(), currentUser(r), date)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, "stat_form", Page{
		Title: "Edit stats of " + fitness.Date(entry.Date),
		Data: statForm{
			Action:  fmt.Sprintf("/stats/%d/edit", date.Unix()),
			Weight:  fmt.Sprint(entry.Weight),
			BodyFat: fmt.Sprint(entry.BodyFat),
			Water:   fmt.Sprint(entry.Water),
			Muscles: fmt.Sprint(entry.Muscles),
		},
	})
}

// Edit overwrites the entry at {date}.
//
// HTTP: POST /stats/{date}/edit
func (h *StatsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	date, err := epochParam(chi.URLParam(r, "date"))
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	form := readStatForm(r, fmt.Sprintf("/stats/%d/edit", date.Unix()))
	v, err := parseStatValues(r)
	if err == nil {
		err = h.stats.EditStat(r.Context(), currentUser(r), date, v)
	}
	if err != nil {
		renderForm(h.render, h.logger, w, r, "stat_form", "Edit stats of "+fitness.Date(date), form, err)
		return
	}
	seeOther(w, r, "/stats")
}

// Delete removes the entry at {date}.
//
// HTTP: POST /stats/{date}/delete
func (h *StatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	date, err := epochParam(chi.URLParam(r, "date"))
	if err == nil {
		err = h.stats.DeleteStat(r.Context(), currentUser(r), date)
	}
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}
	seeOther(w, r, "/stats")
}
