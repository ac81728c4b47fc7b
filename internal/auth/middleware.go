package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/sakif/fittrack/internal/model"
)

// CookieName is the name of the session cookie.
const CookieName = "fittrack_session"

// contextKey is unexported so only this package can read or write the
// session stored in a request context.
type contextKey string

const sessionKey contextKey = "session"

// SessionLoader resolves a session token to a live session.
// service.AuthService implements it.
type SessionLoader interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

// LoadSession attaches the caller's session to the request context when the
// cookie holds a valid token for a live session. Requests without one pass
// through anonymously; a stale cookie is cleared.
func LoadSession(loader SessionLoader, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := SessionToken(r)
			if ok {
				sess, err := loader.Authenticate(r.Context(), token)
				if err == nil {
					r = r.WithContext(WithSession(r.Context(), sess))
				} else {
					ClearSessionCookie(w, secure)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession redirects anonymous requests to loginPath. It must run
// after LoadSession.
func RequireSession(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := SessionFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the authenticated session, if any.
//
//	sess, ok := auth.SessionFromContext(r.Context())
//	if !ok {
//	    // anonymous
//	}
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*model.Session)
	return sess, ok && sess != nil && sess.Username != ""
}

// SessionToken reads the session cookie.
func SessionToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// SetSessionCookie stores token in an HttpOnly cookie that expires with the
// session.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
