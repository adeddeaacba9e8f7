package domain

import (
	"errors"
	"time"
)

var (
	ErrEmptyReview   = errors.New("review text is required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type Review struct {
	ID       string
	StoreID  string
	AuthorID string
	Text     string
	Rating   int

	// AuthorName is joined in on reads; it is not a column of the review.
	AuthorName string

	CreatedAt time.Time
}
