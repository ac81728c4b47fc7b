package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fittrack/internal/model"
)

type fakeLoader struct {
	sessions map[string]*model.Session // keyed by token
}

func (f *fakeLoader) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, errors.New("no such session")
}

// whoAmI writes the session username, or "anonymous".
var whoAmI = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if s, ok := SessionFromContext(r.Context()); ok {
		w.Write([]byte(s.Username))
		return
	}
	w.Write([]byte("anonymous"))
})

func newLoader() *fakeLoader {
	return &fakeLoader{sessions: map[string]*model.Session{
		"good-token": {ID: "sess-1", Username: "alice", ExpiresAt: time.Now().Add(time.Hour)},
	}}
}

func TestLoadSession(t *testing.T) {
	h := LoadSession(newLoader(), false)(whoAmI)

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "good-token"})
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, "alice", rr.Body.String())
	})

	t.Run("no cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "anonymous", rr.Body.String())
		assert.Empty(t, rr.Result().Cookies())
	})

	t.Run("stale cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "revoked"})
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, "anonymous", rr.Body.String())
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

func TestRequireSession(t *testing.T) {
	h := LoadSession(newLoader(), false)(RequireSession("/login")(whoAmI))

	t.Run("anonymous redirects to login", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "good-token"})
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "alice", rr.Body.String())
	})
}

func TestSessionFromContext_Empty(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	_, ok = SessionFromContext(WithSession(context.Background(), &model.Session{}))
	assert.False(t, ok, "session without a username is not authenticated")
}

func TestSetSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok", time.Now().Add(time.Hour), true)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}
