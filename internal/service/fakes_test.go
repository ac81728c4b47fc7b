package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================

// fakeStore is an in-memory implementation of every repository interface.
// It mirrors the SQLite semantics the services rely on: insert-or-ignore,
// NotFound on missing keys, cascading user and route deletion.
type fakeStore struct {
	mu         sync.Mutex
	users      map[string]model.User
	sessions   map[string]model.Session
	stats      map[string]map[int64]model.StatEntry
	routes     map[string]map[string]model.Route
	activities []model.Activity

	// set to a non-nil error to simulate a database failure
	failWith error
}

var (
	_ repository.UserRepository     = (*fakeStore)(nil)
	_ repository.SessionRepository  = (*fakeStore)(nil)
	_ repository.StatRepository     = (*fakeStore)(nil)
	_ repository.RouteRepository    = (*fakeStore)(nil)
	_ repository.ActivityRepository = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]model.User),
		sessions: make(map[string]model.Session),
		stats:    make(map[string]map[int64]model.StatEntry),
		routes:   make(map[string]map[string]model.Route),
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.users[u.Username]; ok {
		return apperror.Conflict("Username already taken")
	}
	if u.GitHubID != 0 {
		for _, other := range f.users {
			if other.GitHubID == u.GitHubID {
				return apperror.Conflict("Username already taken")
			}
		}
	}
	f.users[u.Username] = *u
	return nil
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	return &u, nil
}

func (f *fakeStore) GetUserByGitHubID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.GitHubID == id {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("github user", strconv.FormatInt(id, 10))
}

func (f *fakeStore) DeleteUser(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; !ok {
		return apperror.NotFound("user", username)
	}
	delete(f.users, username)
	delete(f.stats, username)
	delete(f.routes, username)
	for id, s := range f.sessions {
		if s.Username == username {
			delete(f.sessions, id)
		}
	}
	f.activities = f.filterActivities(func(a model.Activity) bool { return a.Username != username })
	return nil
}

func (f *fakeStore) CreateSession(ctx context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[s.Username]; !ok {
		return apperror.NotFound("user", s.Username)
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return &s, nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) AddStat(ctx context.Context, s *model.StatEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	byDate := f.stats[s.Username]
	if byDate == nil {
		byDate = make(map[int64]model.StatEntry)
		f.stats[s.Username] = byDate
	}
	if _, ok := byDate[s.Date.Unix()]; ok {
		return false, nil
	}
	byDate[s.Date.Unix()] = *s
	return true, nil
}

func (f *fakeStore) ListStats(ctx context.Context, username string) ([]model.StatEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.StatEntry{}
	for _, s := range f.stats[username] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeStore) ListStatCategory(ctx context.Context, username string, c model.StatCategory) ([]model.Datapoint, error) {
	stats, err := f.ListStats(ctx, username)
	if err != nil {
		return nil, err
	}
	out := []model.Datapoint{}
	for _, s := range stats {
		out = append(out, model.Datapoint{Date: s.Date, Value: s.Value(c)})
	}
	return out, nil
}

func (f *fakeStore) GetStat(ctx context.Context, username string, date time.Time) (*model.StatEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stats[username][date.Unix()]
	if !ok {
		return nil, apperror.NotFound("stat", strconv.FormatInt(date.Unix(), 10))
	}
	return &s, nil
}

func (f *fakeStore) UpdateStat(ctx context.Context, s *model.StatEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stats[s.Username][s.Date.Unix()]; !ok {
		return apperror.NotFound("stat", strconv.FormatInt(s.Date.Unix(), 10))
	}
	f.stats[s.Username][s.Date.Unix()] = *s
	return nil
}

func (f *fakeStore) DeleteStat(ctx context.Context, username string, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stats[username][date.Unix()]; !ok {
		return apperror.NotFound("stat", strconv.FormatInt(date.Unix(), 10))
	}
	delete(f.stats[username], date.Unix())
	return nil
}

func (f *fakeStore) AddRoute(ctx context.Context, r *model.Route) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byName := f.routes[r.Username]
	if byName == nil {
		byName = make(map[string]model.Route)
		f.routes[r.Username] = byName
	}
	if _, ok := byName[r.Name]; ok {
		return false, nil
	}
	byName[r.Name] = *r
	return true, nil
}

func (f *fakeStore) ListRoutes(ctx context.Context, username string) ([]model.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Route{}
	for _, r := range f.routes[username] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetRoute(ctx context.Context, username, name string) (*model.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.routes[username][name]
	if !ok {
		return nil, apperror.NotFound("route", name)
	}
	return &r, nil
}

func (f *fakeStore) DeleteRoute(ctx context.Context, username, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.routes[username][name]; !ok {
		return apperror.NotFound("route", name)
	}
	delete(f.routes[username], name)
	f.activities = f.filterActivities(func(a model.Activity) bool {
		return a.Username != username || a.RouteName != name
	})
	return nil
}

func (f *fakeStore) AddActivity(ctx context.Context, a *model.Activity) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.routes[a.Username][a.RouteName]; !ok {
		return false, apperror.NotFound("route", a.RouteName)
	}
	for _, existing := range f.activities {
		if existing.Username == a.Username && existing.RouteName == a.RouteName && existing.Date.Equal(a.Date) {
			return false, nil
		}
	}
	f.activities = append(f.activities, *a)
	return true, nil
}

func (f *fakeStore) ListActivities(ctx context.Context, username, routeName string) ([]model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Activity{}
	for _, a := range f.activities {
		if a.Username == username && (routeName == "" || a.RouteName == routeName) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// filterActivities must be called with f.mu held.
func (f *fakeStore) filterActivities(keep func(model.Activity) bool) []model.Activity {
	out := f.activities[:0]
	for _, a := range f.activities {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	// Session tokens are checked against the wall clock, so start there.
	return &fakeClock{t: time.Now().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
