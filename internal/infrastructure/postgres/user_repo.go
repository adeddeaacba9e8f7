package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, name, password_hash, reset_token_hash, reset_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, user.Email, user.Name, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error) {
	query := `
		UPDATE users
		SET    name = $2, email = $3, updated_at = NOW()
		WHERE  id = $1
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, id, name, email)
	updated, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return updated, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    reset_token_hash = $2,
		       reset_expires_at = $3,
		       updated_at       = NOW()
		WHERE  id = $1`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE  reset_token_hash = $1
		  AND  reset_expires_at > $2`,
		tokenHash, now)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Expired and unknown tokens are indistinguishable on purpose.
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error) {
	// The expiry condition in the WHERE clause makes claim-and-clear atomic:
	// a second request with the same token matches zero rows.
	query := `
		UPDATE users
		SET    password_hash    = $2,
		       reset_token_hash = NULL,
		       reset_expires_at = NULL,
		       updated_at       = NOW()
		WHERE  reset_token_hash = $1
		  AND  reset_expires_at > $3
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, tokenHash, passwordHash, now)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) ToggleHeart(ctx context.Context, userID, storeID string) ([]string, error) {
	// Remove-if-present, otherwise add-if-absent, in one statement. Running
	// the delete and the guarded insert inside a single CTE keeps concurrent
	// toggles from the same user from producing duplicates or lost updates.
	query := `
		WITH removed AS (
			DELETE FROM hearts
			WHERE  user_id = $1 AND store_id = $2
			RETURNING store_id
		)
		INSERT INTO hearts (user_id, store_id)
		SELECT $1, $2
		WHERE  NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT (user_id, store_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, userID, storeID); err != nil {
		return nil, fmt.Errorf("toggle heart: %w", err)
	}
	return r.ListHearts(ctx, userID)
}

func (r *UserRepository) ListHearts(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT store_id FROM hearts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list hearts: %w", err)
	}
	defer rows.Close()

	hearts := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan heart: %w", err)
		}
		hearts = append(hearts, id)
	}
	return hearts, rows.Err()
}

func (r *UserRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    reset_token_hash = NULL,
		       reset_expires_at = NULL,
		       updated_at       = NOW()
		WHERE  reset_token_hash IS NOT NULL
		  AND  reset_expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.ResetTokenHash, &u.ResetExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
