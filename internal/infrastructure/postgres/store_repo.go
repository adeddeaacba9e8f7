package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storeColumns = `id, name, description, slug, address, lng, lat, tags, photo, author_id, created_at, updated_at`

// searchVector matches the expression indexed by stores_search_idx.
const searchVector = `to_tsvector('english', name || ' ' || description)`

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	query := `
		INSERT INTO stores (name, description, slug, address, lng, lat, tags, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + storeColumns

	row := r.pool.QueryRow(ctx, query,
		store.Name, store.Description, store.Slug,
		store.Address, store.Lng, store.Lat,
		store.Tags, store.AuthorID,
	)
	return scanStore(row)
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
	return scanStore(row)
}

func (r *StoreRepository) GetBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE slug = $1`, slug)
	return scanStore(row)
}

func (r *StoreRepository) Update(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	query := `
		UPDATE stores
		SET    name = $2, description = $3, slug = $4, address = $5,
		       lng = $6, lat = $7, tags = $8, updated_at = NOW()
		WHERE  id = $1
		RETURNING ` + storeColumns

	row := r.pool.QueryRow(ctx, query,
		store.ID, store.Name, store.Description, store.Slug,
		store.Address, store.Lng, store.Lat, store.Tags,
	)
	return scanStore(row)
}

func (r *StoreRepository) SetPhoto(ctx context.Context, id, photo string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE stores SET photo = $2, updated_at = NOW() WHERE id = $1`, id, photo)
	if err != nil {
		return fmt.Errorf("set photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) List(ctx context.Context, offset, limit int) ([]*domain.Store, error) {
	query := `
		SELECT ` + storeColumns + ` FROM stores
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return collectStores(rows)
}

func (r *StoreRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stores: %w", err)
	}
	return n, nil
}

func (r *StoreRepository) CountSlugMatches(ctx context.Context, base string) (int, error) {
	pattern := "^(" + regexp.QuoteMeta(base) + ")(-[0-9]*)?$"

	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM stores WHERE slug ~* $1`, pattern).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count slug matches: %w", err)
	}
	return n, nil
}

func (r *StoreRepository) ListByTag(ctx context.Context, tag string) ([]*domain.Store, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if tag == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+storeColumns+` FROM stores
			WHERE  cardinality(tags) > 0
			ORDER BY created_at DESC`)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+storeColumns+` FROM stores
			WHERE  $1 = ANY(tags)
			ORDER BY created_at DESC`, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("list stores by tag: %w", err)
	}
	return collectStores(rows)
}

func (r *StoreRepository) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tag, COUNT(*) AS count
		FROM   stores, unnest(tags) AS tag
		GROUP BY tag
		ORDER BY count DESC, tag ASC`)
	if err != nil {
		return nil, fmt.Errorf("tag counts: %w", err)
	}
	defer rows.Close()

	var tags []domain.TagCount
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

func (r *StoreRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Store, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+storeColumns+` FROM stores
		WHERE  `+searchVector+` @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(`+searchVector+`, plainto_tsquery('english', $1)) DESC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search stores: %w", err)
	}
	return collectStores(rows)
}

func (r *StoreRepository) Near(ctx context.Context, q repository.NearQuery) ([]*domain.Store, error) {
	// Haversine over lng/lat columns; close enough at a 10 km radius to skip
	// a PostGIS dependency.
	query := `
		SELECT ` + storeColumns + ` FROM (
			SELECT *,
			       2 * 6371000 * asin(sqrt(
			           pow(sin(radians(lat - $2) / 2), 2) +
			           cos(radians($2)) * cos(radians(lat)) *
			           pow(sin(radians(lng - $1) / 2), 2)
			       )) AS distance_m
			FROM stores
		) s
		WHERE  distance_m <= $3
		ORDER BY distance_m ASC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, q.Lng, q.Lat, q.RadiusMeters, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("stores near: %w", err)
	}
	return collectStores(rows)
}

func (r *StoreRepository) Top(ctx context.Context, minReviews, limit int) ([]*domain.TopStore, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.slug, s.photo,
		       COUNT(r.id)          AS review_count,
		       AVG(r.rating)::float8 AS average_rating
		FROM   stores s
		JOIN   reviews r ON r.store_id = s.id
		GROUP BY s.id, s.name, s.slug, s.photo
		HAVING COUNT(r.id) >= $1
		ORDER BY average_rating DESC
		LIMIT $2`, minReviews, limit)
	if err != nil {
		return nil, fmt.Errorf("top stores: %w", err)
	}
	defer rows.Close()

	var top []*domain.TopStore
	for rows.Next() {
		var t domain.TopStore
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Photo, &t.ReviewCount, &t.AverageRating); err != nil {
			return nil, fmt.Errorf("scan top store: %w", err)
		}
		top = append(top, &t)
	}
	return top, rows.Err()
}

func (r *StoreRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Store, error) {
	if len(ids) == 0 {
		return []*domain.Store{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+storeColumns+` FROM stores
		WHERE  id = ANY($1)
		ORDER BY created_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("list stores by ids: %w", err)
	}
	return collectStores(rows)
}

func collectStores(rows pgx.Rows) ([]*domain.Store, error) {
	defer rows.Close()

	var stores []*domain.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (*domain.Store, error) {
	var s domain.Store
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.Slug,
		&s.Address, &s.Lng, &s.Lat, &s.Tags, &s.Photo,
		&s.AuthorID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return &s, nil
}
