package repository

import (
	"context"
	"time"

	"github.com/abakirov/storefront/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error)

	// SetResetToken overwrites any previously issued token; there is never
	// more than one live reset credential per user.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// FindByResetToken returns the user holding tokenHash with an expiry
	// strictly after now. Missing and expired tokens are the same error.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)

	// ConsumeResetToken atomically sets the new password hash and clears the
	// reset fields, but only while the token is still live. Find-and-update
	// in one statement so the token cannot be spent twice.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error)

	// ToggleHeart atomically removes storeID from the user's hearts if
	// present, adds it otherwise, and returns the updated set.
	ToggleHeart(ctx context.Context, userID, storeID string) ([]string, error)
	ListHearts(ctx context.Context, userID string) ([]string, error)

	// PurgeExpiredTokens clears reset fields past their expiry and reports
	// how many users were touched. Called by the janitor.
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error)
}
