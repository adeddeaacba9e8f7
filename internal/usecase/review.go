package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/repository"
)

type ReviewUsecase struct {
	reviews repository.ReviewRepository
	stores  repository.StoreRepository
}

func NewReviewUsecase(reviews repository.ReviewRepository, stores repository.StoreRepository) *ReviewUsecase {
	return &ReviewUsecase{reviews: reviews, stores: stores}
}

func (u *ReviewUsecase) AddReview(ctx context.Context, authorID, storeID, text string, rating int) (*domain.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyReview
	}
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	// Referential presence check; the FK constraint is the backstop.
	if _, err := u.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}

	review, err := u.reviews.Create(ctx, &domain.Review{
		StoreID:  storeID,
		AuthorID: authorID,
		Text:     text,
		Rating:   rating,
	})
	if err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}
	return review, nil
}
