package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/service"
)

const msgConfirmDelete = "Type your username to confirm the deletion"

// AccountHandler serves account deletion and the data export.
type AccountHandler struct {
	auth   *service.AuthService
	export *service.ExportService
	render *Renderer
	secure bool
	logger *slog.Logger
}

func NewAccountHandler(authSvc *service.AuthService, export *service.ExportService, render *Renderer, secureCookies bool, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{auth: authSvc, export: export, render: render, secure: secureCookies, logger: logger}
}

// HTTP: GET /delete
func (h *AccountHandler) ShowDelete(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "delete", Page{Title: "Delete account"})
}

// Delete removes the account and everything it owns, then logs out. The
// form must repeat the username.
//
// HTTP: POST /delete
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if formValue(r, "confirm") != user {
		renderForm(h.render, h.logger, w, r, "delete", "Delete account", nil,
			apperror.ValidationFailed("confirm", msgConfirmDelete))
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), user); err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	auth.ClearSessionCookie(w, h.secure)
	seeOther(w, r, "/login")
}

// Export downloads all of the user's data as YAML.
//
// HTTP: GET /export
func (h *AccountHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	data, err := h.export.Export(r.Context(), user)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		renderError(h.render, h.logger, w, r, fmt.Errorf("handler: encoding export: %w", err))
		return
	}

	filename := fmt.Sprintf("fittrack-%s-%s.yaml", user, data.ExportedAt.Format(time.DateOnly))
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
