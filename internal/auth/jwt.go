// The session cookie holds an HS256 JWT that names the server-side session:
//
//	sub = username
//	jti = session id (xid)
//	exp = session expiry
//
// A valid signature only proves the token was issued here. The session row
// must still exist for the request to be authenticated, so logout and
// account deletion take effect immediately.

package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/fittrack/internal/model"
)

const issuer = "fittrack"

// TokenService signs and validates session tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret must be at least
// 16 characters.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// TokenClaims is what a validated token says about its session.
type TokenClaims struct {
	SessionID string
	Username  string
}

// Generate signs a token for the given session. The token expires with it.
func (s *TokenService) Generate(sess *model.Session) (string, error) {
	if sess == nil || sess.ID == "" || sess.Username == "" {
		return "", errors.New("auth: session must have an id and a username")
	}

	c := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   sess.Username,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		Issuer:    issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string. It checks the signature,
// algorithm, issuer and expiry, and requires both sub and jti.
func (s *TokenService) Validate(tokenStr string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" || c.ID == "" {
		return nil, errors.New("auth: token has no session")
	}

	return &TokenClaims{SessionID: c.ID, Username: c.Subject}, nil
}
