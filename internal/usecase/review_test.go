package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/usecase"
)

func newReviewUsecase(reviews *fakeReviewRepo, stores *fakeStoreRepo) *usecase.ReviewUsecase {
	return usecase.NewReviewUsecase(reviews, stores)
}

func TestAddReview_Success(t *testing.T) {
	var captured *domain.Review
	reviews := &fakeReviewRepo{
		create: func(_ context.Context, review *domain.Review) (*domain.Review, error) {
			captured = review
			review.ID = "review-1"
			return review, nil
		},
	}

	review, err := newReviewUsecase(reviews, presentStores("store-1")).AddReview(
		context.Background(), "user-1", "store-1", "  Great plov.  ", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.ID != "review-1" {
		t.Errorf("review ID = %q, want review-1", review.ID)
	}
	if captured.Text != "Great plov." {
		t.Errorf("text = %q, want trimmed", captured.Text)
	}
}

func TestAddReview_EmptyText(t *testing.T) {
	_, err := newReviewUsecase(&fakeReviewRepo{}, &fakeStoreRepo{}).AddReview(
		context.Background(), "user-1", "store-1", "   ", 3)
	if !errors.Is(err, domain.ErrEmptyReview) {
		t.Errorf("want ErrEmptyReview, got %v", err)
	}
}

func TestAddReview_RatingOutOfRange(t *testing.T) {
	u := newReviewUsecase(&fakeReviewRepo{}, &fakeStoreRepo{})

	for _, rating := range []int{0, 6, -1} {
		_, err := u.AddReview(context.Background(), "user-1", "store-1", "fine", rating)
		if !errors.Is(err, domain.ErrInvalidRating) {
			t.Errorf("rating %d: want ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestAddReview_UnknownStore(t *testing.T) {
	_, err := newReviewUsecase(&fakeReviewRepo{}, presentStores()).AddReview(
		context.Background(), "user-1", "no-such-store", "fine", 3)
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Errorf("want ErrStoreNotFound, got %v", err)
	}
}
