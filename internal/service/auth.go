package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
	"github.com/sakif/fittrack/internal/validate"
)

// Messages shown on the login and register forms.
const (
	MsgEmptyValues     = "Values cannot be empty"
	MsgUsernameTaken   = "Username already taken"
	MsgBadCredentials  = "Username or password wrong"
	MsgInvalidUsername = "Username can only contain letters, numbers and '._-' and must start with a letter or number."
)

// DefaultSessionTTL is used when NewAuthService is given a non-positive TTL.
const DefaultSessionTTL = 7 * 24 * time.Hour

// maxGitHubNameAttempts bounds the suffix search for a free username on
// first GitHub sign-in.
const maxGitHubNameAttempts = 100

// AuthService owns registration, login, and server-side sessions.
//
//	AuthHandler (HTTP) → AuthService → UserRepository, SessionRepository
//	                                 ↘ PasswordService (PBKDF2), TokenService (JWT)
type AuthService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	ttl       time.Duration
	now       Clock
	logger    *slog.Logger
}

// AuthConfig collects the AuthService dependencies.
type AuthConfig struct {
	Users      repository.UserRepository
	Sessions   repository.SessionRepository
	Tokens     *auth.TokenService
	Passwords  *auth.PasswordService
	SessionTTL time.Duration
	Now        Clock
	Logger     *slog.Logger
}

func NewAuthService(cfg AuthConfig) *AuthService {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:     cfg.Users,
		sessions:  cfg.Sessions,
		tokens:    cfg.Tokens,
		passwords: cfg.Passwords,
		ttl:       ttl,
		now:       orNow(cfg.Now),
		logger:    cfg.Logger,
	}
}

// AuthResult is a freshly started session plus the signed token the
// handler puts in the cookie.
type AuthResult struct {
	Session *model.Session
	Token   string
}

// Register creates a password account. A taken username yields an
// apperror.ErrConflict carrying MsgUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return apperror.ValidationFailed("username", MsgEmptyValues)
	}
	if err := validate.Username(username); err != nil {
		return apperror.ValidationFailed("username", MsgInvalidUsername)
	}

	hash, salt, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return apperror.Conflict(MsgUsernameTaken)
		}
		return fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	s.logger.Info("user registered", slog.String("username", username))
	return nil
}

// Login checks the password of username. Unknown users, wrong passwords and
// accounts without a password all yield the same apperror.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username", MsgEmptyValues)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(MsgBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: loading user %s: %w", username, err)
	}
	if !user.HasPassword() {
		return nil, apperror.Unauthorized(MsgBadCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, user.Salt, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("stored password unreadable",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.Unauthorized(MsgBadCredentials)
	}
	return user, nil
}

// StartSession creates a session row for username and signs its token.
// Expired sessions of all users are pruned first.
func (s *AuthService) StartSession(ctx context.Context, username string) (*AuthResult, error) {
	if _, err := s.PruneSessions(ctx); err != nil {
		s.logger.Warn("pruning sessions failed", slog.String("error", err.Error()))
	}

	now := s.now()
	sess := &model.Session{
		ID:        xid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("service/auth: creating session for %s: %w", username, err)
	}

	token, err := s.tokens.Generate(sess)
	if err != nil {
		return nil, fmt.Errorf("service/auth: signing session token: %w", err)
	}

	s.logger.Info("session started",
		slog.String("username", username),
		slog.String("session", sess.ID),
	)
	return &AuthResult{Session: sess, Token: token}, nil
}

// Authenticate resolves a cookie token to its live session. It implements
// auth.SessionLoader.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthorized("invalid session token")
	}

	sess, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("session ended")
		}
		return nil, fmt.Errorf("service/auth: loading session %s: %w", claims.SessionID, err)
	}
	if sess.Username != claims.Username || sess.Expired(s.now()) {
		return nil, apperror.Unauthorized("session ended")
	}
	return sess, nil
}

// Logout ends the session named by token. Invalid or unknown tokens are not
// an error; there is nothing left to end.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("service/auth: deleting session %s: %w", claims.SessionID, err)
	}
	s.logger.Info("session ended", slog.String("username", claims.Username))
	return nil
}

// DeleteAccount removes the user and everything they own, sessions
// included.
func (s *AuthService) DeleteAccount(ctx context.Context, username string) error {
	if err := s.users.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("service/auth: deleting user %s: %w", username, err)
	}
	s.logger.Info("account deleted", slog.String("username", username))
	return nil
}

// PruneSessions deletes every expired session.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service/auth: %w", err)
	}
	if n > 0 {
		s.logger.Debug("expired sessions pruned", slog.Int64("count", n))
	}
	return n, nil
}

// LoginOrRegisterGitHub signs in the user linked to a GitHub account,
// creating a passwordless user on first sign-in. The new username is the
// GitHub login, suffixed with -2, -3, ... if the login is taken.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil || gh.ID == 0 {
		return nil, fmt.Errorf("service/auth: GitHub user must not be empty")
	}

	user, err := s.users.GetUserByGitHubID(ctx, gh.ID)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.createGitHubUser(ctx, gh)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("service/auth: loading user by GitHub id %d: %w", gh.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("username", user.Username),
		slog.Int64("githubID", gh.ID),
	)
	return s.StartSession(ctx, user.Username)
}

func (s *AuthService) createGitHubUser(ctx context.Context, gh *auth.GitHubUser) (*model.User, error) {
	base := gh.Login
	if validate.Username(base) != nil {
		base = "github-" + strconv.FormatInt(gh.ID, 10)
	}

	for i := 1; i <= maxGitHubNameAttempts; i++ {
		name := base
		if i > 1 {
			name = base + "-" + strconv.Itoa(i)
		}
		user := &model.User{Username: name, GitHubID: gh.ID, CreatedAt: s.now()}
		err := s.users.CreateUser(ctx, user)
		if err == nil {
			s.logger.Info("user registered via GitHub", slog.String("username", name))
			return user, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, fmt.Errorf("service/auth: creating GitHub user %s: %w", name, err)
		}
	}
	return nil, apperror.Conflict(MsgUsernameTaken)
}
