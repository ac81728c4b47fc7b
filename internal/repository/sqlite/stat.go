package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

var _ repository.StatRepository = (*DB)(nil)

// statColumns maps a category onto its column. It is the only source of
// column names interpolated into stats queries.
var statColumns = map[model.StatCategory]string{
	model.CategoryWeight:  "weight",
	model.CategoryBodyFat: "body_fat",
	model.CategoryWater:   "water",
	model.CategoryMuscles: "muscles",
}

// AddStat inserts a stat entry keyed by (username, date). A second entry
// for the same key is ignored and reported as not inserted.
func (db *DB) AddStat(ctx context.Context, stat *model.StatEntry) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO stats (username, date, weight, body_fat, water, muscles)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stat.Username,
		stat.Date.Unix(),
		stat.Weight,
		stat.BodyFat,
		stat.Water,
		stat.Muscles,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding stat for %s: %w", stat.Username, err)
	}
	ok, err := inserted(res)
	if err != nil {
		return false, fmt.Errorf("sqlite: adding stat for %s: %w", stat.Username, err)
	}
	return ok, nil
}

// ListStats returns all of the user's entries, oldest first.
func (db *DB) ListStats(ctx context.Context, username string) ([]model.StatEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT date, weight, body_fat, water, muscles
		 FROM stats WHERE username = ? ORDER BY date`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing stats for %s: %w", username, err)
	}
	defer rows.Close()

	stats := []model.StatEntry{}
	for rows.Next() {
		var (
			s    = model.StatEntry{Username: username}
			date int64
		)
		if err := rows.Scan(&date, &s.Weight, &s.BodyFat, &s.Water, &s.Muscles); err != nil {
			return nil, fmt.Errorf("sqlite: scanning stat row: %w", err)
		}
		s.Date = fromEpoch(date)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating stat rows: %w", err)
	}
	return stats, nil
}

// ListStatCategory returns (date, value) pairs of one category, oldest
// first. An unknown category returns an empty result without querying.
func (db *DB) ListStatCategory(ctx context.Context, username string, category model.StatCategory) ([]model.Datapoint, error) {
	col, ok := statColumns[category]
	if !ok {
		return []model.Datapoint{}, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT date, %s FROM stats WHERE username = ? ORDER BY date`, col),
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s for %s: %w", col, username, err)
	}
	defer rows.Close()

	points := []model.Datapoint{}
	for rows.Next() {
		var (
			p    model.Datapoint
			date int64
		)
		if err := rows.Scan(&date, &p.Value); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", col, err)
		}
		p.Date = fromEpoch(date)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s rows: %w", col, err)
	}
	return points, nil
}

func (db *DB) GetStat(ctx context.Context, username string, date time.Time) (*model.StatEntry, error) {
	s := model.StatEntry{Username: username, Date: fromEpoch(date.Unix())}
	err := db.conn.QueryRowContext(ctx,
		`SELECT weight, body_fat, water, muscles FROM stats WHERE username = ? AND date = ?`,
		username, date.Unix(),
	).Scan(&s.Weight, &s.BodyFat, &s.Water, &s.Muscles)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("stat", strconv.FormatInt(date.Unix(), 10))
		}
		return nil, fmt.Errorf("sqlite: getting stat %d for %s: %w", date.Unix(), username, err)
	}
	return &s, nil
}

// UpdateStat overwrites the measurements of the entry keyed by
// (stat.Username, stat.Date).
func (db *DB) UpdateStat(ctx context.Context, stat *model.StatEntry) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE stats SET weight = ?, body_fat = ?, water = ?, muscles = ?
		 WHERE username = ? AND date = ?`,
		stat.Weight,
		stat.BodyFat,
		stat.Water,
		stat.Muscles,
		stat.Username,
		stat.Date.Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating stat %d for %s: %w", stat.Date.Unix(), stat.Username, err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("sqlite: updating stat %d for %s: %w", stat.Date.Unix(), stat.Username, err)
	}
	if !ok {
		return apperror.NotFound("stat", strconv.FormatInt(stat.Date.Unix(), 10))
	}
	return nil
}

func (db *DB) DeleteStat(ctx context.Context, username string, date time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM stats WHERE username = ? AND date = ?`, username, date.Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting stat %d for %s: %w", date.Unix(), username, err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("sqlite: deleting stat %d for %s: %w", date.Unix(), username, err)
	}
	if !ok {
		return apperror.NotFound("stat", strconv.FormatInt(date.Unix(), 10))
	}
	return nil
}
