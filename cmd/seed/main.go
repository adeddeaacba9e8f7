// seed inserts a test user and a handful of stores with reviews into the
// local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "correct-horse-battery"
)

type storeSpec struct {
	name        string
	description string
	address     string
	lng, lat    float64
	tags        []string
	ratings     []int
}

// Coordinates cluster around central Bishkek so /near queries return hits.
var stores = []storeSpec{
	{"Monkey Bar", "Cold drinks, hot takes.", "Chuy Ave 120, Bishkek", 74.590, 42.875, []string{"Bar", "Nightlife"}, []int{5, 4, 5}},
	{"Sierra Coffee", "Third-wave espresso and quiet corners.", "Manas Ave 57, Bishkek", 74.588, 42.872, []string{"Coffee", "Wifi"}, []int{4, 4}},
	{"Navat", "Traditional plov and lagman.", "Kiev St 114, Bishkek", 74.605, 42.876, []string{"Restaurant", "Family Friendly"}, []int{5, 3, 4}},
	{"Faiza", "Home-style samsa, always a queue.", "Jibek Jolu 555, Bishkek", 74.612, 42.883, []string{"Restaurant"}, []int{4}},
	{"Burger House", "Late night, open flame.", "Toktogul St 93, Bishkek", 74.597, 42.870, []string{"Restaurant", "Nightlife"}, nil},
	{"Chaikhana Jalalabad", "Green tea by the litre.", "Osh Bazaar, Bishkek", 74.570, 42.874, []string{"Restaurant", "Family Friendly"}, []int{2, 5}},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert test user
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, 'Seed User', $2)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		seedEmail, string(hash),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	var inserted, skipped int
	for _, spec := range stores {
		slug := domain.Slugify(spec.name)

		var storeID string
		err := pool.QueryRow(ctx, `
			INSERT INTO stores (name, description, slug, address, lng, lat, tags, author_id)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8
			WHERE NOT EXISTS (SELECT 1 FROM stores WHERE slug = $3)
			RETURNING id`,
			spec.name, spec.description, slug, spec.address,
			spec.lng, spec.lat, spec.tags, userID,
		).Scan(&storeID)
		if err != nil {
			// No row returned means the store already exists; idempotent re-run.
			skipped++
			continue
		}
		inserted++

		for _, rating := range spec.ratings {
			_, err := pool.Exec(ctx, `
				INSERT INTO reviews (store_id, author_id, text, rating)
				VALUES ($1, $2, 'Seeded review.', $3)`,
				storeID, userID, rating)
			if err != nil {
				log.Fatalf("insert review for %s: %v", spec.name, err)
			}
		}
	}

	fmt.Printf("seeded: user %s, %d stores inserted, %d skipped\n", seedEmail, inserted, skipped)
	fmt.Printf("login with %s / %s\n", seedEmail, seedPassword)
}
