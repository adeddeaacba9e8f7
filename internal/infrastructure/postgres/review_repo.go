package postgres

import (
	"context"
	"fmt"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	query := `
		INSERT INTO reviews (store_id, author_id, text, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, store_id, author_id, text, rating, created_at`

	var created domain.Review
	err := r.pool.QueryRow(ctx, query,
		review.StoreID, review.AuthorID, review.Text, review.Rating,
	).Scan(
		&created.ID, &created.StoreID, &created.AuthorID,
		&created.Text, &created.Rating, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &created, nil
}

func (r *ReviewRepository) ListByStore(ctx context.Context, storeID string) ([]*domain.Review, error) {
	query := `
		SELECT r.id, r.store_id, r.author_id, r.text, r.rating, r.created_at, u.name
		FROM   reviews r
		JOIN   users u ON u.id = r.author_id
		WHERE  r.store_id = $1
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		var rv domain.Review
		err := rows.Scan(&rv.ID, &rv.StoreID, &rv.AuthorID, &rv.Text, &rv.Rating, &rv.CreatedAt, &rv.AuthorName)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}
