// Package repository declares the storage interfaces the services depend on.
// The sqlite subpackage implements all of them on one *sqlite.DB.
package repository

import (
	"context"
	"time"

	"github.com/sakif/fittrack/internal/model"
)

type UserRepository interface {
	// CreateUser inserts a user; returns apperror.ErrConflict if the
	// username (or GitHub id) is taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	// DeleteUser removes the user and, by cascade, everything they own.
	DeleteUser(ctx context.Context, username string) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// The Add* methods below have insert-or-ignore semantics: the bool result is
// false when a row with the same key already existed and nothing changed.

type StatRepository interface {
	AddStat(ctx context.Context, stat *model.StatEntry) (bool, error)
	ListStats(ctx context.Context, username string) ([]model.StatEntry, error)
	ListStatCategory(ctx context.Context, username string, category model.StatCategory) ([]model.Datapoint, error)
	GetStat(ctx context.Context, username string, date time.Time) (*model.StatEntry, error)
	UpdateStat(ctx context.Context, stat *model.StatEntry) error
	DeleteStat(ctx context.Context, username string, date time.Time) error
}

type RouteRepository interface {
	AddRoute(ctx context.Context, route *model.Route) (bool, error)
	ListRoutes(ctx context.Context, username string) ([]model.Route, error)
	GetRoute(ctx context.Context, username, name string) (*model.Route, error)
	DeleteRoute(ctx context.Context, username, name string) error
}

type ActivityRepository interface {
	AddActivity(ctx context.Context, activity *model.Activity) (bool, error)
	// ListActivities returns all of the user's activities, or only those on
	// routeName when it is non-empty.
	ListActivities(ctx context.Context, username, routeName string) ([]model.Activity, error)
}
