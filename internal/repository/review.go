package repository

import (
	"context"

	"github.com/abakirov/storefront/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	// ListByStore returns reviews newest first, with the author name joined in.
	ListByStore(ctx context.Context, storeID string) ([]*domain.Review, error)
}
