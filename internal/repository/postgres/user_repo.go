package postgres

import (
	"context"
	"errors"
	"time"

	"techgallery-backend/internal/domain"
	"techgallery-backend/pkg/apperror"
	"techgallery-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const userColumns = `id, COALESCE(identity_token, ''), login, email, COALESCE(name, ''), created_at, updated_at`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserDirectory {
	return &userRepo{db: db}
}

func (r *userRepo) getByIdentityToken(ctx context.Context, token string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE identity_token = $1`
	return r.getOne(ctx, query, token)
}

func (r *userRepo) ResolveCaller(ctx context.Context, token, login, email string) (*domain.User, error) {
	user, err := r.getByIdentityToken(ctx, token)
	if err != nil || user != nil || login == "" {
		return user, err
	}

	// The conflict branch only links rows without a token; a row linked to
	// another subject yields no RETURNING row and resolves to nil.
	query := `
		INSERT INTO users (id, identity_token, login, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (login) DO UPDATE
			SET identity_token = EXCLUDED.identity_token,
			    email = EXCLUDED.email,
			    updated_at = EXCLUDED.updated_at
			WHERE users.identity_token IS NULL
		RETURNING ` + userColumns

	user, err = r.getOne(ctx, query, uuid.NewString(), token, login, email, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Linked by a concurrent request for the same subject
			return r.getByIdentityToken(ctx, token)
		}
		return nil, err
	}
	if user == nil {
		logger.Log.Warnw("Login already linked to another identity", "login", login)
		return nil, nil
	}

	logger.Log.Infow("Identity linked to directory user", "user_id", user.ID, "login", login)
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		// Not a valid key, cannot match any row
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// SyncByLogin upserts on login so repeated imports of the same feed row
// reuse the directory user.
func (r *userRepo) SyncByLogin(ctx context.Context, login, email string) (*domain.User, error) {
	now := time.Now()
	query := `
		INSERT INTO users (id, login, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (login) DO UPDATE
			SET email = EXCLUDED.email,
			    updated_at = CASE WHEN users.email = EXCLUDED.email THEN users.updated_at ELSE EXCLUDED.updated_at END
		RETURNING ` + userColumns

	user, err := r.getOne(ctx, query, uuid.NewString(), login, email, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.Conflict("User with this e-mail already exists")
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.IdentityToken, &user.Login, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return &user, nil
}
