// Package handler contains the HTTP handlers of fittrack.
//
// Handlers parse the form, call one service method, and either redirect
// (303 See Other after a successful POST) or render a page. They hold no
// business rules; validation beyond "is this a number" lives in the
// services.
package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/fitness"
)

// CSRFFieldName is the hidden form field carrying the CSRF token. The
// server passes the same name to csrf.Protect.
const CSRFFieldName = "csrf_token"

// Page is the data every template receives. Data holds the page-specific
// view model.
type Page struct {
	Title         string
	Username      string
	Error         string
	CSRFFieldName string
	CSRFToken     string
	Data          any
}

// Renderer holds one parsed template set per page. Templates are parsed
// once at startup; a missing or broken template fails NewRenderer.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

var funcs = template.FuncMap{
	"chartJSON": func(c fitness.Chart) (string, error) {
		b, err := json.Marshal(c)
		return string(b), err
	},
}

// NewRenderer parses base.html together with every other *.html file in
// fsys. Each page is rendered by name without the extension.
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("handler: listing templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, file := range names {
		if file == "base.html" {
			continue
		}
		tmpl, err := template.New(file).Funcs(funcs).ParseFS(fsys, "base.html", file)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s: %w", file, err)
		}
		pages[strings.TrimSuffix(file, ".html")] = tmpl
	}
	if _, ok := pages["error"]; !ok {
		return nil, fmt.Errorf("handler: error.html template is required")
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes page name with the given status. The page is executed into
// a buffer first so a template error still yields a clean 500.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	tmpl, ok := rn.pages[name]
	if !ok {
		rn.logger.Error("unknown template", slog.String("template", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		p.Username = sess.Username
	}
	p.CSRFFieldName = CSRFFieldName
	p.CSRFToken = csrf.Token(r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", p); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
