package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves registration, login, logout and the optional GitHub
// sign-in flow.
//
//   - ShowLogin / Login        → GET/POST /login
//   - ShowRegister / Register  → GET/POST /register
//   - Logout                   → GET /logout
//   - GitHubLogin / Callback   → GET /auth/github/{login,callback}
type AuthHandler struct {
	auth   *service.AuthService
	github *auth.GitHubProvider // nil when GitHub sign-in is not configured
	render *Renderer
	secure bool
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, github *auth.GitHubProvider, render *Renderer, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, github: github, render: render, secure: secureCookies, logger: logger}
}

type credentialsForm struct {
	Username string
	GitHub   bool
}

func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		seeOther(w, r, "/")
		return
	}
	h.render.Render(w, r, http.StatusOK, "login", Page{Title: "Log in", Data: credentialsForm{GitHub: h.github != nil}})
}

// Login checks the credentials and starts a session.
//
// HTTP: POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := formValue(r, "username")
	form := credentialsForm{Username: username, GitHub: h.github != nil}

	if _, err := h.auth.Login(r.Context(), username, r.PostFormValue("password")); err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			h.logger.Info("login rejected", slog.String("username", username))
		}
		renderForm(h.render, h.logger, w, r, "login", "Log in", form, err)
		return
	}

	h.startSession(w, r, username)
}

func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "register", Page{Title: "Register", Data: credentialsForm{}})
}

// Register creates the account and logs it in.
//
// HTTP: POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := formValue(r, "username")
	if err := h.auth.Register(r.Context(), username, r.PostFormValue("password")); err != nil {
		renderForm(h.render, h.logger, w, r, "register", "Register", credentialsForm{Username: username}, err)
		return
	}
	h.startSession(w, r, username)
}

// Logout ends the session and clears the cookie, whether or not the
// session was still valid.
//
// HTTP: GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.SessionToken(r); ok {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			logError(h.logger, r, err)
		}
	}
	auth.ClearSessionCookie(w, h.secure)
	seeOther(w, r, "/login")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, username string) {
	res, err := h.auth.StartSession(r.Context(), username)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}
	auth.SetSessionCookie(w, res.Token, res.Session.ExpiresAt, h.secure)
	seeOther(w, r, "/")
}

// GitHubLogin redirects to GitHub's authorization page. A random state is
// stored in a short-lived cookie and checked by GitHubCallback.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// GitHubCallback completes the OAuth flow:
//
//  1. compare the state parameter with the state cookie
//  2. exchange the code for the GitHub profile
//  3. sign in (or create) the linked local user
//  4. set the session cookie and redirect home
//
// HTTP: GET /auth/github/callback?code=...&state=...
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch")
		renderError(h.render, h.logger, w, r, apperror.Forbidden("Invalid sign-in state, please try again."))
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", errParam))
		seeOther(w, r, "/login")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		renderError(h.render, h.logger, w, r, apperror.ValidationFailed("code", "Missing sign-in code."))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		renderError(h.render, h.logger, w, r, err)
		return
	}

	auth.SetSessionCookie(w, res.Token, res.Session.ExpiresAt, h.secure)
	seeOther(w, r, "/")
}
