package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/email"
	"github.com/abakirov/storefront/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultResetTTL = 1 * time.Hour
	defaultJWTTTL   = 24 * time.Hour
)

type AuthUsecase struct {
	users      repository.UserRepository
	email      email.Sender
	jwtKey     []byte
	resetTTL   time.Duration
	jwtTTL     time.Duration
	appBaseURL string
	now        func() time.Time
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, jwtKey []byte, appBaseURL string) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		email:      emailSender,
		jwtKey:     jwtKey,
		resetTTL:   defaultResetTTL,
		jwtTTL:     defaultJWTTTL,
		appBaseURL: appBaseURL,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// Register validates the input, hashes the password, and logs the new user
// straight in by returning a signed JWT alongside the user.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", domain.ErrInvalidCredentials)
	}
	if input.Password != input.PasswordConfirm {
		return nil, "", domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        domain.NormalizeEmail(input.Email),
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.signJWT(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login answers with the same error for an unknown email and a wrong
// password, so the response does not confirm which addresses have accounts.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, domain.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := u.signJWT(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ForgotPassword issues a fresh reset token, persists its hash with a 1 hour
// expiry, and emails the reset link. Any previously issued token is
// overwritten. Unknown emails surface ErrUserNotFound: the original app tells
// users outright that no such account exists.
//
// The token is persisted before the email is dispatched; a failed send leaves
// a valid-but-undelivered token behind, which simply expires.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, domain.NormalizeEmail(emailAddr))
	if err != nil {
		return err
	}

	raw := make([]byte, 20)
	if _, err = io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	expiresAt := u.now().Add(u.resetTTL)
	if err = u.users.SetResetToken(ctx, user.ID, hashToken(rawToken), expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := u.appBaseURL + "/account/reset/" + rawToken
	if err = u.email.SendPasswordReset(ctx, user, resetURL); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ValidateResetToken returns the user holding a still-live token. Unknown and
// expired tokens both come back as ErrTokenInvalid.
func (u *AuthUsecase) ValidateResetToken(ctx context.Context, rawToken string) (*domain.User, error) {
	user, err := u.users.FindByResetToken(ctx, hashToken(rawToken), u.now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find by reset token: %w", err)
	}
	return user, nil
}

// ResetPassword spends the token and applies the new password in one atomic
// update, then re-authenticates the user under the new credential.
func (u *AuthUsecase) ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*domain.User, string, error) {
	if password != passwordConfirm {
		return nil, "", domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.ConsumeResetToken(ctx, hashToken(rawToken), string(hash), u.now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrTokenInvalid
		}
		return nil, "", fmt.Errorf("consume reset token: %w", err)
	}

	token, err := u.signJWT(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *AuthUsecase) signJWT(user *domain.User) (string, error) {
	now := u.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Tokens are stored hashed so a leaked users table does not leak live
// reset credentials.
func hashToken(rawToken string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
}
