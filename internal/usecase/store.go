package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	storesPerPage  = 6
	searchLimit    = 5
	nearRadiusM    = 10000
	nearLimit      = 10
	topMinReviews  = 2
	topStoresLimit = 10
)

type StoreUsecase struct {
	stores  repository.StoreRepository
	reviews repository.ReviewRepository
	users   repository.UserRepository
}

func NewStoreUsecase(stores repository.StoreRepository, reviews repository.ReviewRepository, users repository.UserRepository) *StoreUsecase {
	return &StoreUsecase{stores: stores, reviews: reviews, users: users}
}

type StoreInput struct {
	Name        string
	Description string
	Address     string
	Lng         float64
	Lat         float64
	Tags        []string
}

func (in *StoreInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
	if in.Name == "" {
		return domain.ErrInvalidStoreName
	}
	if in.Address == "" {
		return domain.ErrMissingLocation
	}
	return nil
}

func (u *StoreUsecase) CreateStore(ctx context.Context, authorID string, input StoreInput) (*domain.Store, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	slug, err := u.generateSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	store, err := u.stores.Create(ctx, &domain.Store{
		Name:        input.Name,
		Description: input.Description,
		Slug:        slug,
		Address:     input.Address,
		Lng:         input.Lng,
		Lat:         input.Lat,
		Tags:        normalizeTags(input.Tags),
		AuthorID:    authorID,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return store, nil
}

// UpdateStore rejects non-owners and regenerates the slug only when the name
// actually changed.
func (u *StoreUsecase) UpdateStore(ctx context.Context, storeID, userID string, input StoreInput) (*domain.Store, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	store, err := u.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.AuthorID != userID {
		return nil, domain.ErrNotOwner
	}

	if input.Name != store.Name {
		slug, err := u.generateSlug(ctx, input.Name)
		if err != nil {
			return nil, err
		}
		store.Slug = slug
	}

	store.Name = input.Name
	store.Description = input.Description
	store.Address = input.Address
	store.Lng = input.Lng
	store.Lat = input.Lat
	store.Tags = normalizeTags(input.Tags)

	updated, err := u.stores.Update(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}
	return updated, nil
}

// AttachPhoto records an already-processed upload on the store.
func (u *StoreUsecase) AttachPhoto(ctx context.Context, storeID, userID, filename string) error {
	store, err := u.stores.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store.AuthorID != userID {
		return domain.ErrNotOwner
	}
	return u.stores.SetPhoto(ctx, storeID, filename)
}

// StoreDetail is a store with its author and reviews explicitly fetched.
type StoreDetail struct {
	Store   *domain.Store
	Author  *domain.User
	Reviews []*domain.Review
}

func (u *StoreUsecase) GetBySlug(ctx context.Context, slug string) (*StoreDetail, error) {
	store, err := u.stores.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	author, err := u.users.FindByID(ctx, store.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("fetch author: %w", err)
	}

	reviews, err := u.reviews.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}

	return &StoreDetail{Store: store, Author: author, Reviews: reviews}, nil
}

type StorePage struct {
	Stores []*domain.Store
	Page   int
	Pages  int
	Total  int
}

// ListStores returns one page of stores. The page and the total count are
// independent reads, so they run concurrently and join before returning.
// A page past the end comes back as ErrPageOutOfRange with Pages filled in,
// so the caller can point at the last valid page.
func (u *StoreUsecase) ListStores(ctx context.Context, page int) (*StorePage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * storesPerPage

	var (
		stores []*domain.Store
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stores, err = u.stores.List(gctx, offset, storesPerPage)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = u.stores.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	pages := int(math.Ceil(float64(total) / float64(storesPerPage)))
	result := &StorePage{Stores: stores, Page: page, Pages: pages, Total: total}

	if len(stores) == 0 && offset > 0 {
		return result, domain.ErrPageOutOfRange
	}
	return result, nil
}

type TagPage struct {
	Tags   []domain.TagCount
	Tag    string
	Stores []*domain.Store
}

// StoresByTag fetches the tag histogram and the stores carrying tag (any tag
// when empty) concurrently.
func (u *StoreUsecase) StoresByTag(ctx context.Context, tag string) (*TagPage, error) {
	var (
		tags   []domain.TagCount
		stores []*domain.Store
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = u.stores.TagCounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = u.stores.ListByTag(gctx, tag)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stores by tag: %w", err)
	}

	return &TagPage{Tags: tags, Tag: tag, Stores: stores}, nil
}

func (u *StoreUsecase) Search(ctx context.Context, query string) ([]*domain.Store, error) {
	return u.stores.Search(ctx, query, searchLimit)
}

func (u *StoreUsecase) Near(ctx context.Context, lng, lat float64) ([]*domain.Store, error) {
	return u.stores.Near(ctx, repository.NearQuery{
		Lng:          lng,
		Lat:          lat,
		RadiusMeters: nearRadiusM,
		Limit:        nearLimit,
	})
}

func (u *StoreUsecase) TopStores(ctx context.Context) ([]*domain.TopStore, error) {
	return u.stores.Top(ctx, topMinReviews, topStoresLimit)
}

// generateSlug derives the base slug from name and resolves collisions by
// counting existing slugs matching ^(base)(-[0-9]*)?$: n matches means this
// store becomes base-(n+1). Best effort only — two concurrent creations with
// the same name can both observe the same count and end up colliding. No
// unique index enforces slugs, so the loser is not rejected either.
func (u *StoreUsecase) generateSlug(ctx context.Context, name string) (string, error) {
	base := domain.Slugify(name)
	if base == "" {
		return "", domain.ErrInvalidStoreName
	}

	n, err := u.stores.CountSlugMatches(ctx, base)
	if err != nil {
		return "", fmt.Errorf("count slug matches: %w", err)
	}
	if n == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, n+1), nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
