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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a user. INSERT OR IGNORE makes the uniqueness check and
// the insert a single statement; zero affected rows means the username or
// GitHub id already exists.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	var githubID sql.NullInt64
	if user.GitHubID != 0 {
		githubID = sql.NullInt64{Int64: user.GitHubID, Valid: true}
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, hashed_pw, salt, github_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.Salt,
		githubID,
		user.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	ok, err := inserted(res)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}
	if !ok {
		return apperror.Conflict("Username already taken")
	}
	return nil
}

// GetUserByUsername returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT username, hashed_pw, salt, github_id, created_at
		 FROM users WHERE username = ?`,
		username,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}
	return u, nil
}

// GetUserByGitHubID returns apperror.ErrNotFound if no user is linked to
// the GitHub account.
func (db *DB) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT username, hashed_pw, salt, github_id, created_at
		 FROM users WHERE github_id = ?`,
		githubID,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("github user", strconv.FormatInt(githubID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user by github_id %d: %w", githubID, err)
	}
	return u, nil
}

// DeleteUser removes the user row; sessions, stats, routes and activities
// go with it through ON DELETE CASCADE.
func (db *DB) DeleteUser(ctx context.Context, username string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", username, err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", username, err)
	}
	if !ok {
		return apperror.NotFound("user", username)
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u         model.User
		githubID  sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&u.Username, &u.PasswordHash, &u.Salt, &githubID, &createdAt); err != nil {
		return nil, err
	}
	u.GitHubID = githubID.Int64
	u.CreatedAt = fromEpoch(createdAt)
	return &u, nil
}
