package usecase_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/repository"
	"github.com/abakirov/storefront/internal/usecase"
)

// ---- fakes ----

type fakeStoreRepo struct {
	create           func(ctx context.Context, store *domain.Store) (*domain.Store, error)
	getByID          func(ctx context.Context, id string) (*domain.Store, error)
	getBySlug        func(ctx context.Context, slug string) (*domain.Store, error)
	update           func(ctx context.Context, store *domain.Store) (*domain.Store, error)
	setPhoto         func(ctx context.Context, id, photo string) error
	list             func(ctx context.Context, offset, limit int) ([]*domain.Store, error)
	count            func(ctx context.Context) (int, error)
	countSlugMatches func(ctx context.Context, base string) (int, error)
	listByTag        func(ctx context.Context, tag string) ([]*domain.Store, error)
	tagCounts        func(ctx context.Context) ([]domain.TagCount, error)
	search           func(ctx context.Context, query string, limit int) ([]*domain.Store, error)
	near             func(ctx context.Context, q repository.NearQuery) ([]*domain.Store, error)
	top              func(ctx context.Context, minReviews, limit int) ([]*domain.TopStore, error)
	listByIDs        func(ctx context.Context, ids []string) ([]*domain.Store, error)
}

func (r *fakeStoreRepo) Create(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	return r.create(ctx, store)
}

func (r *fakeStoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	return r.getByID(ctx, id)
}

func (r *fakeStoreRepo) GetBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	return r.getBySlug(ctx, slug)
}

func (r *fakeStoreRepo) Update(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	return r.update(ctx, store)
}

func (r *fakeStoreRepo) SetPhoto(ctx context.Context, id, photo string) error {
	return r.setPhoto(ctx, id, photo)
}

func (r *fakeStoreRepo) List(ctx context.Context, offset, limit int) ([]*domain.Store, error) {
	return r.list(ctx, offset, limit)
}

func (r *fakeStoreRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx)
}

func (r *fakeStoreRepo) CountSlugMatches(ctx context.Context, base string) (int, error) {
	return r.countSlugMatches(ctx, base)
}

func (r *fakeStoreRepo) ListByTag(ctx context.Context, tag string) ([]*domain.Store, error) {
	return r.listByTag(ctx, tag)
}

func (r *fakeStoreRepo) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	return r.tagCounts(ctx)
}

func (r *fakeStoreRepo) Search(ctx context.Context, query string, limit int) ([]*domain.Store, error) {
	return r.search(ctx, query, limit)
}

func (r *fakeStoreRepo) Near(ctx context.Context, q repository.NearQuery) ([]*domain.Store, error) {
	return r.near(ctx, q)
}

func (r *fakeStoreRepo) Top(ctx context.Context, minReviews, limit int) ([]*domain.TopStore, error) {
	return r.top(ctx, minReviews, limit)
}

func (r *fakeStoreRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Store, error) {
	return r.listByIDs(ctx, ids)
}

type fakeReviewRepo struct {
	create      func(ctx context.Context, review *domain.Review) (*domain.Review, error)
	listByStore func(ctx context.Context, storeID string) ([]*domain.Review, error)
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	return r.create(ctx, review)
}

func (r *fakeReviewRepo) ListByStore(ctx context.Context, storeID string) ([]*domain.Review, error) {
	return r.listByStore(ctx, storeID)
}

// slugTrackingRepo keeps created slugs in memory and answers CountSlugMatches
// the way the SQL regexp does: base itself, or base-<digits>.
func slugTrackingRepo() *fakeStoreRepo {
	var slugs []string
	repo := &fakeStoreRepo{}
	repo.create = func(_ context.Context, store *domain.Store) (*domain.Store, error) {
		slugs = append(slugs, store.Slug)
		store.ID = "store-" + store.Slug
		return store, nil
	}
	repo.countSlugMatches = func(_ context.Context, base string) (int, error) {
		n := 0
		for _, s := range slugs {
			if s == base {
				n++
				continue
			}
			if suffix, ok := strings.CutPrefix(s, base+"-"); ok && allDigits(suffix) {
				n++
			}
		}
		return n, nil
	}
	return repo
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func newStoreUsecase(stores *fakeStoreRepo) *usecase.StoreUsecase {
	return usecase.NewStoreUsecase(stores, &fakeReviewRepo{}, &fakeUserRepo{})
}

var validInput = usecase.StoreInput{
	Name:    "Monkey Bar",
	Address: "Chuy Ave 120, Bishkek",
	Lng:     74.59,
	Lat:     42.875,
}

// ---- CreateStore / slugs ----

func TestCreateStore_SlugFromName(t *testing.T) {
	u := newStoreUsecase(slugTrackingRepo())

	store, err := u.CreateStore(context.Background(), "user-1", validInput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Slug != "monkey-bar" {
		t.Errorf("slug = %q, want monkey-bar", store.Slug)
	}
}

// Three names that all slugify to monkey-bar land on monkey-bar,
// monkey-bar-2, monkey-bar-3 in creation order.
func TestCreateStore_SlugCollisionChain(t *testing.T) {
	u := newStoreUsecase(slugTrackingRepo())

	names := []string{"Monkey Bar", "Monkey Bar!!", "MONKEY BAR"}
	want := []string{"monkey-bar", "monkey-bar-2", "monkey-bar-3"}

	for i, name := range names {
		input := validInput
		input.Name = name
		store, err := u.CreateStore(context.Background(), "user-1", input)
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
		if store.Slug != want[i] {
			t.Errorf("create %q: slug = %q, want %q", name, store.Slug, want[i])
		}
	}
}

func TestCreateStore_EmptyName(t *testing.T) {
	input := validInput
	input.Name = "  "

	_, err := newStoreUsecase(&fakeStoreRepo{}).CreateStore(context.Background(), "user-1", input)
	if !errors.Is(err, domain.ErrInvalidStoreName) {
		t.Errorf("want ErrInvalidStoreName, got %v", err)
	}
}

// A name with no slug-able characters has no usable identity.
func TestCreateStore_SymbolOnlyName(t *testing.T) {
	input := validInput
	input.Name = "!!!"

	_, err := newStoreUsecase(slugTrackingRepo()).CreateStore(context.Background(), "user-1", input)
	if !errors.Is(err, domain.ErrInvalidStoreName) {
		t.Errorf("want ErrInvalidStoreName, got %v", err)
	}
}

func TestCreateStore_MissingAddress(t *testing.T) {
	input := validInput
	input.Address = ""

	_, err := newStoreUsecase(&fakeStoreRepo{}).CreateStore(context.Background(), "user-1", input)
	if !errors.Is(err, domain.ErrMissingLocation) {
		t.Errorf("want ErrMissingLocation, got %v", err)
	}
}

func TestCreateStore_DropsBlankTags(t *testing.T) {
	repo := slugTrackingRepo()
	input := validInput
	input.Tags = []string{" Bar ", "", "  ", "Wifi"}

	store, err := newStoreUsecase(repo).CreateStore(context.Background(), "user-1", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Bar", "Wifi"}; !reflect.DeepEqual(store.Tags, want) {
		t.Errorf("tags = %v, want %v", store.Tags, want)
	}
}

// ---- UpdateStore ----

func existingStore() *domain.Store {
	return &domain.Store{
		ID:       "store-1",
		Name:     "Monkey Bar",
		Slug:     "monkey-bar",
		Address:  "Chuy Ave 120, Bishkek",
		AuthorID: "user-1",
	}
}

func TestUpdateStore_NotOwner(t *testing.T) {
	repo := &fakeStoreRepo{
		getByID: func(_ context.Context, _ string) (*domain.Store, error) {
			return existingStore(), nil
		},
	}

	_, err := newStoreUsecase(repo).UpdateStore(context.Background(), "store-1", "someone-else", validInput)
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("want ErrNotOwner, got %v", err)
	}
}

func TestUpdateStore_SameName_KeepsSlug(t *testing.T) {
	var slugCounted bool
	repo := &fakeStoreRepo{
		getByID: func(_ context.Context, _ string) (*domain.Store, error) {
			return existingStore(), nil
		},
		countSlugMatches: func(_ context.Context, _ string) (int, error) {
			slugCounted = true
			return 0, nil
		},
		update: func(_ context.Context, store *domain.Store) (*domain.Store, error) {
			return store, nil
		},
	}

	input := validInput
	input.Description = "Now with a patio"
	updated, err := newStoreUsecase(repo).UpdateStore(context.Background(), "store-1", "user-1", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Slug != "monkey-bar" {
		t.Errorf("slug = %q, want monkey-bar", updated.Slug)
	}
	if slugCounted {
		t.Error("slug was regenerated even though the name did not change")
	}
}

func TestUpdateStore_NewName_RegeneratesSlug(t *testing.T) {
	repo := &fakeStoreRepo{
		getByID: func(_ context.Context, _ string) (*domain.Store, error) {
			return existingStore(), nil
		},
		countSlugMatches: func(_ context.Context, _ string) (int, error) {
			return 0, nil
		},
		update: func(_ context.Context, store *domain.Store) (*domain.Store, error) {
			return store, nil
		},
	}

	input := validInput
	input.Name = "Gorilla Bar"
	updated, err := newStoreUsecase(repo).UpdateStore(context.Background(), "store-1", "user-1", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Slug != "gorilla-bar" {
		t.Errorf("slug = %q, want gorilla-bar", updated.Slug)
	}
}

// ---- AttachPhoto ----

func TestAttachPhoto_NotOwner(t *testing.T) {
	repo := &fakeStoreRepo{
		getByID: func(_ context.Context, _ string) (*domain.Store, error) {
			return existingStore(), nil
		},
	}

	err := newStoreUsecase(repo).AttachPhoto(context.Background(), "store-1", "someone-else", "photo.jpg")
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("want ErrNotOwner, got %v", err)
	}
}

// ---- ListStores ----

func pagedRepo(total int) *fakeStoreRepo {
	all := make([]*domain.Store, total)
	for i := range all {
		all[i] = &domain.Store{ID: "store", Slug: "store"}
	}
	return &fakeStoreRepo{
		list: func(_ context.Context, offset, limit int) ([]*domain.Store, error) {
			if offset >= total {
				return nil, nil
			}
			end := min(offset+limit, total)
			return all[offset:end], nil
		},
		count: func(_ context.Context) (int, error) { return total, nil },
	}
}

func TestListStores_FirstPage(t *testing.T) {
	page, err := newStoreUsecase(pagedRepo(7)).ListStores(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Stores) != 6 {
		t.Errorf("got %d stores, want 6 per page", len(page.Stores))
	}
	if page.Pages != 2 || page.Total != 7 {
		t.Errorf("pages = %d total = %d, want 2 and 7", page.Pages, page.Total)
	}
}

// A page past the end still reports how many pages exist so the client can
// redirect to the last one.
func TestListStores_PageOutOfRange(t *testing.T) {
	page, err := newStoreUsecase(pagedRepo(7)).ListStores(context.Background(), 5)
	if !errors.Is(err, domain.ErrPageOutOfRange) {
		t.Fatalf("want ErrPageOutOfRange, got %v", err)
	}
	if page == nil || page.Pages != 2 {
		t.Errorf("page info missing on out-of-range error: %+v", page)
	}
}

func TestListStores_ClampsPageToOne(t *testing.T) {
	var capturedOffset = -1
	repo := pagedRepo(3)
	inner := repo.list
	repo.list = func(ctx context.Context, offset, limit int) ([]*domain.Store, error) {
		capturedOffset = offset
		return inner(ctx, offset, limit)
	}

	if _, err := newStoreUsecase(repo).ListStores(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedOffset != 0 {
		t.Errorf("offset = %d, want 0", capturedOffset)
	}
}

func TestListStores_CountError_Propagates(t *testing.T) {
	dbErr := errors.New("db down")
	repo := pagedRepo(3)
	repo.count = func(_ context.Context) (int, error) { return 0, dbErr }

	_, err := newStoreUsecase(repo).ListStores(context.Background(), 1)
	if !errors.Is(err, dbErr) {
		t.Errorf("want wrapped dbErr, got %v", err)
	}
}

// ---- Near ----

func TestNear_UsesFixedRadiusAndLimit(t *testing.T) {
	var captured repository.NearQuery
	repo := &fakeStoreRepo{
		near: func(_ context.Context, q repository.NearQuery) ([]*domain.Store, error) {
			captured = q
			return nil, nil
		},
	}

	if _, err := newStoreUsecase(repo).Near(context.Background(), 74.59, 42.875); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.RadiusMeters != 10000 {
		t.Errorf("radius = %v, want 10000", captured.RadiusMeters)
	}
	if captured.Limit != 10 {
		t.Errorf("limit = %d, want 10", captured.Limit)
	}
	if captured.Lng != 74.59 || captured.Lat != 42.875 {
		t.Errorf("coords = (%v, %v), want (74.59, 42.875)", captured.Lng, captured.Lat)
	}
}
