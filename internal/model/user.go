// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. Username is the primary key everywhere.
//
// PasswordHash and Salt are hex strings. Both are empty for accounts created
// through GitHub sign-in; such accounts cannot log in with a password.
type User struct {
	Username     string    `json:"username"  yaml:"username"`
	PasswordHash string    `json:"-"         yaml:"-"`
	Salt         string    `json:"-"         yaml:"-"`
	GitHubID     int64     `json:"githubId,omitempty" yaml:"github_id,omitempty"` // 0 when not linked
	CreatedAt    time.Time `json:"createdAt" yaml:"created_at"`
}

// HasPassword reports whether the user can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != "" && u.Salt != ""
}
