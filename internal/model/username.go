package model

import (
	"errors"
	"regexp"
)

// MaxUsernameLength bounds usernames so they stay valid file names.
const MaxUsernameLength = 64

// ErrInvalidUsername is returned for usernames that are not safe storage keys.
var ErrInvalidUsername = errors.New("username must be 1-64 characters of letters, digits, '.', '_' or '-'")

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateUsername checks that username can be used as a storage key on
// any backend, including as a file name.
func ValidateUsername(username string) error {
	if username == "" || len(username) > MaxUsernameLength {
		return ErrInvalidUsername
	}
	if username == "." || username == ".." || username[0] == '.' {
		return ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}
