package domain

import (
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string

	// Reset credentials travel together: a set token hash without an expiry
	// is never written, and an expired token is treated as absent.
	ResetTokenHash *string
	ResetExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Gravatar returns the avatar URL for the user's email. The address itself
// is never exposed, only its md5 digest.
func (u *User) Gravatar() string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return fmt.Sprintf("https://gravatar.com/avatar/%x?s=200", hash)
}

// NormalizeEmail lowercases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
