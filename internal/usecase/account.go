package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/repository"
)

type AccountUsecase struct {
	users  repository.UserRepository
	stores repository.StoreRepository
}

func NewAccountUsecase(users repository.UserRepository, stores repository.StoreRepository) *AccountUsecase {
	return &AccountUsecase{users: users, stores: stores}
}

func (u *AccountUsecase) Get(ctx context.Context, userID string) (*domain.User, []string, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	hearts, err := u.users.ListHearts(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, hearts, nil
}

func (u *AccountUsecase) UpdateProfile(ctx context.Context, userID, name, emailAddr string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidCredentials)
	}
	return u.users.UpdateProfile(ctx, userID, name, domain.NormalizeEmail(emailAddr))
}

// ToggleHeart flips storeID's membership in the user's favorite set and
// returns the updated set. The store must exist; the toggle itself is a
// single atomic storage operation, so repeated or concurrent calls never
// produce duplicates.
func (u *AccountUsecase) ToggleHeart(ctx context.Context, userID, storeID string) ([]string, error) {
	if _, err := u.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	return u.users.ToggleHeart(ctx, userID, storeID)
}

// HeartedStores resolves the user's hearts into full store records.
func (u *AccountUsecase) HeartedStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	hearts, err := u.users.ListHearts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.stores.ListByIDs(ctx, hearts)
}
