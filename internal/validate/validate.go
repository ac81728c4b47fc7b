// Package validate contains the allow-lists applied to user-supplied names
// before they reach the store.
package validate

import (
	"errors"
	"regexp"
)

var (
	usernameRe   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)
	identifierRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

// Username validates a username for length and allowed characters.
func Username(s string) error {
	if !usernameRe.MatchString(s) {
		return errors.New("invalid username")
	}
	return nil
}

// Identifier reports whether s is a safe name for a route or stat category:
// letters, digits, '-' and '_' only, 1 to 64 characters.
func Identifier(s string) bool {
	return identifierRe.MatchString(s)
}
