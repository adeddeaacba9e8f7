package repository

import (
	"context"

	"github.com/abakirov/storefront/internal/domain"
)

type NearQuery struct {
	Lng          float64
	Lat          float64
	RadiusMeters float64
	Limit        int
}

// UseCase depends on interface, not concrete implementation.
// This way we get: 1) can swap DB later without touching usecase 2) We can pass a mock implementation of interface in tests
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) (*domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Store, error)
	Update(ctx context.Context, store *domain.Store) (*domain.Store, error)
	SetPhoto(ctx context.Context, id, photo string) error

	// List returns one page of stores, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.Store, error)
	Count(ctx context.Context) (int, error)

	// CountSlugMatches counts slugs matching ^(base)(-[0-9]*)?$
	// case-insensitively. Advisory only: no unique index backs slugs, so two
	// concurrent creations can both see the same count.
	CountSlugMatches(ctx context.Context, base string) (int, error)

	// ListByTag returns stores carrying tag; an empty tag means any tag.
	ListByTag(ctx context.Context, tag string) ([]*domain.Store, error)
	TagCounts(ctx context.Context) ([]domain.TagCount, error)

	// Search runs ranked full-text search over name and description.
	Search(ctx context.Context, query string, limit int) ([]*domain.Store, error)
	Near(ctx context.Context, q NearQuery) ([]*domain.Store, error)
	Top(ctx context.Context, minReviews, limit int) ([]*domain.TopStore, error)

	ListByIDs(ctx context.Context, ids []string) ([]*domain.Store, error)
}
