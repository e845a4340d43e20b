package postgres

import (
	"context"
	"errors"
	"fmt"

	"techgallery-backend/internal/domain"
	"techgallery-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const skillColumns = `id, user_id, technology_id, value, active, inactivated_date, created_at`

type skillRepo struct {
	db *pgxpool.Pool
}

func NewSkillRepository(db *pgxpool.Pool) domain.SkillRepository {
	return &skillRepo{db: db}
}

func (r *skillRepo) FindActiveByUserAndTechnology(ctx context.Context, userID, technologyID string) (*domain.Skill, error) {
	// ORDER BY guards against the rare case of two active rows left by
	// concurrent writers: the newest one wins.
	query := `SELECT ` + skillColumns + `
		FROM skills
		WHERE user_id = $1 AND technology_id = $2 AND active
		ORDER BY id DESC
		LIMIT 1`

	skill, err := scanSkill(r.db.QueryRow(ctx, query, userID, technologyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return skill, nil
}

func (r *skillRepo) Insert(ctx context.Context, skill *domain.Skill) (int64, error) {
	query := `INSERT INTO skills (user_id, technology_id, value, active, created_at)
              VALUES ($1, $2, $3, $4, NOW())
              RETURNING id, created_at`

	var id int64
	err := r.db.QueryRow(ctx, query, skill.UserID, skill.TechnologyID, skill.Value, skill.Active).Scan(&id, &skill.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return 0, apperror.NotFound(fmt.Sprintf("Unknown user or technology (%s)", pgErr.ConstraintName))
		}
		return 0, apperror.Internal(err)
	}
	return id, nil
}

// Update only touches the lifecycle columns; ratings are never rewritten.
func (r *skillRepo) Update(ctx context.Context, skill *domain.Skill) error {
	query := `UPDATE skills SET active = $2, inactivated_date = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, skill.ID, skill.Active, skill.InactivatedDate)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(domain.MsgUserSkillNotExists)
	}
	return nil
}

func (r *skillRepo) ListActiveByUser(ctx context.Context, userID string, technologyIDs []string) ([]domain.Skill, error) {
	query := `SELECT ` + skillColumns + `
		FROM skills
		WHERE user_id = $1 AND active
		  AND (cardinality($2::text[]) = 0 OR technology_id = ANY($2::text[]))
		ORDER BY technology_id ASC`

	if technologyIDs == nil {
		technologyIDs = []string{}
	}
	return r.list(ctx, query, userID, pq.Array(technologyIDs))
}

func (r *skillRepo) ListHistory(ctx context.Context, userID, technologyID string) ([]domain.Skill, error) {
	query := `SELECT ` + skillColumns + `
		FROM skills
		WHERE user_id = $1 AND technology_id = $2
		ORDER BY id DESC`
	return r.list(ctx, query, userID, technologyID)
}

func (r *skillRepo) list(ctx context.Context, query string, args ...any) ([]domain.Skill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	out := make([]domain.Skill, 0)
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		out = append(out, *skill)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func scanSkill(row pgx.Row) (*domain.Skill, error) {
	var s domain.Skill
	var value int
	if err := row.Scan(&s.ID, &s.UserID, &s.TechnologyID, &value, &s.Active, &s.InactivatedDate, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Value = &value
	return &s, nil
}
