package domain

import (
	"errors"
	"time"
)

var (
	ErrStoreNotFound    = errors.New("store not found")
	ErrInvalidStoreName = errors.New("store name is required")
	ErrMissingLocation  = errors.New("store address and coordinates are required")
	ErrNotOwner         = errors.New("you must own a store in order to edit it")
	ErrPageOutOfRange   = errors.New("page out of range")
)

type Store struct {
	ID          string
	Name        string
	Description string
	Slug        string

	// Location
	Address string
	Lng     float64
	Lat     float64

	Tags  []string
	Photo *string // uploaded filename, nil when no photo

	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TagCount is one row of the tag aggregation: how many stores carry a tag.
type TagCount struct {
	Tag   string
	Count int
}

// TopStore is one row of the top-stores aggregation. Only stores with at
// least two reviews qualify; ordering is by average rating.
type TopStore struct {
	ID            string
	Name          string
	Slug          string
	Photo         *string
	ReviewCount   int
	AverageRating float64
}
