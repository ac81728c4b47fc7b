package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/fittrack/internal/apperror"
)

// statusOf maps a domain error onto an HTTP status. errors.Is walks the
// wrap chain, so service-level fmt.Errorf("...: %w") wrapping is fine.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the text shown to the user for err. Internal errors never
// leak: their message is the generic one.
func userMessage(err error) string {
	if statusOf(err) == http.StatusInternalServerError {
		return "Something went wrong. Please try again."
	}
	return apperror.MessageOf(err, http.StatusText(statusOf(err)))
}

// renderForm re-renders a form page after a failed POST, carrying the
// user's input back in data.
func renderForm(rn *Renderer, logger *slog.Logger, w http.ResponseWriter, r *http.Request, name, title string, data any, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logError(logger, r, err)
	}
	rn.Render(w, r, status, name, Page{Title: title, Error: userMessage(err), Data: data})
}

// renderError renders the error page for err.
func renderError(rn *Renderer, logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logError(logger, r, err)
	}
	rn.Render(w, r, status, "error", Page{Title: http.StatusText(status), Error: userMessage(err)})
}

func logError(logger *slog.Logger, r *http.Request, err error) {
	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}

// seeOther redirects after a successful POST.
func seeOther(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
