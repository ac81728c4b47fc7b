package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fittrack/internal/logging"
)

func TestNewRenderer_RequiresErrorPage(t *testing.T) {
	fsys := fstest.MapFS{
		"base.html": {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
		"home.html": {Data: []byte(`{{define "content"}}home{{end}}`)},
	}
	_, err := NewRenderer(fsys, logging.Discard())
	assert.Error(t, err)
}

func TestNewRenderer_BrokenTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"base.html":  {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
		"error.html": {Data: []byte(`{{define "content"}}{{.Error}{{end}}`)},
	}
	_, err := NewRenderer(fsys, logging.Discard())
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	fsys := fstest.MapFS{
		"base.html":  {Data: []byte(`{{define "base"}}<h1>{{.Title}}</h1>{{template "content" .}}{{end}}`)},
		"error.html": {Data: []byte(`{{define "content"}}<p>{{.Error}}</p>{{end}}`)},
		"boom.html":  {Data: []byte(`{{define "content"}}{{.Data.Missing}}{{end}}`)},
	}
	rn, err := NewRenderer(fsys, logging.Discard())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	t.Run("escapes and sets status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rn.Render(rec, req, http.StatusNotFound, "error", Page{Title: "Not Found", Error: "<b>gone</b>"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1>Not Found</h1>")
		assert.Contains(t, rec.Body.String(), "&lt;b&gt;gone&lt;/b&gt;")
	})

	t.Run("unknown page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rn.Render(rec, req, http.StatusOK, "nope", Page{})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("execution error yields clean 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rn.Render(rec, req, http.StatusOK, "boom", Page{Data: 42})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "<h1>")
	})
}
