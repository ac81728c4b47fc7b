package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

var _ repository.ActivityRepository = (*DB)(nil)

// AddActivity inserts an activity keyed by (username, route, date). The
// route must exist (foreign key).
func (db *DB) AddActivity(ctx context.Context, a *model.Activity) (bool, error) {
	var heartRate sql.NullInt64
	if a.HeartRate > 0 {
		heartRate = sql.NullInt64{Int64: int64(a.HeartRate), Valid: true}
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO activities (username, route_name, date, time, pace, speed, heart_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Username,
		a.RouteName,
		a.Date.Unix(),
		a.Seconds,
		a.Pace,
		a.Speed,
		heartRate,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding activity on %s for %s: %w", a.RouteName, a.Username, err)
	}
	ok, err := inserted(res)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding activity on %s for %s: %w", a.RouteName, a.Username, err)
	}
	return ok, nil
}

// ListActivities returns activities oldest first, optionally limited to one
// route.
func (db *DB) ListActivities(ctx context.Context, username, routeName string) ([]model.Activity, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT route_name, date, time, pace, speed, heart_rate
		 FROM activities
		 WHERE username = ? AND (? = '' OR route_name = ?)
		 ORDER BY date, route_name`,
		username, routeName, routeName,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activities for %s: %w", username, err)
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var (
			a         = model.Activity{Username: username}
			date      int64
			heartRate sql.NullInt64
		)
		if err := rows.Scan(&a.RouteName, &date, &a.Seconds, &a.Pace, &a.Speed, &heartRate); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		a.Date = fromEpoch(date)
		a.HeartRate = int(heartRate.Int64)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activity rows: %w", err)
	}
	return activities, nil
}
