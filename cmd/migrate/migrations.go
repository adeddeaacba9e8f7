package main

// Each entry is one migration; order is the version number. Never reorder or
// edit an applied entry — append a new one instead.
var migrations = []string{
	// 1: extensions
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	// 2: users
	`CREATE TABLE users (
		id               uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		email            text NOT NULL UNIQUE,
		name             text NOT NULL,
		password_hash    text NOT NULL,
		reset_token_hash text,
		reset_expires_at timestamptz,
		created_at       timestamptz NOT NULL DEFAULT NOW(),
		updated_at       timestamptz NOT NULL DEFAULT NOW()
	)`,

	// 3: reset-token lookup; partial index since most users hold no token
	`CREATE INDEX users_reset_token_idx ON users (reset_token_hash)
		WHERE reset_token_hash IS NOT NULL`,

	// 4: stores. slug is indexed but deliberately NOT unique: collision
	// handling is an advisory count-based scheme in the application.
	`CREATE TABLE stores (
		id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name        text NOT NULL,
		description text NOT NULL DEFAULT '',
		slug        text NOT NULL,
		address     text NOT NULL,
		lng         double precision NOT NULL,
		lat         double precision NOT NULL,
		tags        text[] NOT NULL DEFAULT '{}',
		photo       text,
		author_id   uuid NOT NULL REFERENCES users(id),
		created_at  timestamptz NOT NULL DEFAULT NOW(),
		updated_at  timestamptz NOT NULL DEFAULT NOW()
	)`,

	// 5: store indexes
	`CREATE INDEX stores_slug_idx ON stores (slug)`,
	`CREATE INDEX stores_created_idx ON stores (created_at DESC, id DESC)`,
	`CREATE INDEX stores_tags_idx ON stores USING gin (tags)`,
	`CREATE INDEX stores_search_idx ON stores
		USING gin (to_tsvector('english', name || ' ' || description))`,

	// 9: reviews
	`CREATE TABLE reviews (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		store_id   uuid NOT NULL REFERENCES stores(id),
		author_id  uuid NOT NULL REFERENCES users(id),
		text       text NOT NULL,
		rating     int NOT NULL CHECK (rating BETWEEN 1 AND 5),
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX reviews_store_idx ON reviews (store_id, created_at DESC)`,

	// 11: hearts — the composite primary key is what makes add-if-absent
	// (ON CONFLICT DO NOTHING) work
	`CREATE TABLE hearts (
		user_id    uuid NOT NULL REFERENCES users(id),
		store_id   uuid NOT NULL REFERENCES stores(id),
		created_at timestamptz NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, store_id)
	)`,
}
