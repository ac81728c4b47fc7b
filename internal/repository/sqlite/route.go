package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

var _ repository.RouteRepository = (*DB)(nil)

// AddRoute inserts a route keyed by (username, name); an existing route of
// the same name is left untouched.
func (db *DB) AddRoute(ctx context.Context, route *model.Route) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO routes (username, route_name, distance, height)
		 VALUES (?, ?, ?, ?)`,
		route.Username, route.Name, route.Distance, route.Height,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding route %s for %s: %w", route.Name, route.Username, err)
	}
	ok, err := inserted(res)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding route %s for %s: %w", route.Name, route.Username, err)
	}
	return ok, nil
}

// ListRoutes returns the user's routes ordered by name.
func (db *DB) ListRoutes(ctx context.Context, username string) ([]model.Route, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT route_name, distance, height FROM routes WHERE username = ? ORDER BY route_name`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing routes for %s: %w", username, err)
	}
	defer rows.Close()

	routes := []model.Route{}
	for rows.Next() {
		r := model.Route{Username: username}
		if err := rows.Scan(&r.Name, &r.Distance, &r.Height); err != nil {
			return nil, fmt.Errorf("sqlite: scanning route row: %w", err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating route rows: %w", err)
	}
	return routes, nil
}

func (db *DB) GetRoute(ctx context.Context, username, name string) (*model.Route, error) {
	r := model.Route{Username: username, Name: name}
	err := db.conn.QueryRowContext(ctx,
		`SELECT distance, height FROM routes WHERE username = ? AND route_name = ?`,
		username, name,
	).Scan(&r.Distance, &r.Height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("route", name)
		}
		return nil, fmt.Errorf("sqlite: getting route %s for %s: %w", name, username, err)
	}
	return &r, nil
}

// DeleteRoute removes the route and, by cascade, its activities.
func (db *DB) DeleteRoute(ctx context.Context, username, name string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM routes WHERE username = ? AND route_name = ?`, username, name,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting route %s for %s: %w", name, username, err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("sqlite: deleting route %s for %s: %w", name, username, err)
	}
	if !ok {
		return apperror.NotFound("route", name)
	}
	return nil
}
