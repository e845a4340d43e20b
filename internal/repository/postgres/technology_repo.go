package postgres

import (
	"context"
	"errors"

	"techgallery-backend/internal/domain"
	"techgallery-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type technologyRepo struct {
	db *pgxpool.Pool
}

func NewTechnologyRepository(db *pgxpool.Pool) domain.TechnologyCatalog {
	return &technologyRepo{db: db}
}

func (r *technologyRepo) GetByID(ctx context.Context, id string) (*domain.Technology, error) {
	query := `SELECT id, name FROM technologies WHERE id = $1`
	var tech domain.Technology
	err := r.db.QueryRow(ctx, query, id).Scan(&tech.ID, &tech.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return &tech, nil
}
