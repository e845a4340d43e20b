package domain

import (
	"context"
	"time"
)

const (
	MinSkillValue = 0
	MaxSkillValue = 5
)

// Skill is one historical rating of a user for a technology. Superseded
// ratings are kept with Active=false and InactivatedDate set.
type Skill struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	TechnologyID    string     `json:"technology_id"`
	Value           *int       `json:"value"`
	Active          bool       `json:"active"`
	InactivatedDate *time.Time `json:"inactivated_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ImportUserSkillRecord is one row of the external skill feed.
type ImportUserSkillRecord struct {
	Email     string   `json:"email" validate:"required,email"`
	TechSkill []string `json:"tech_skill" validate:"required,min=1,dive,required"`
}

type ImportResult struct {
	Records int `json:"records"`
	Skills  int `json:"skills"`
}

type SkillRepository interface {
	// FindActiveByUserAndTechnology returns (nil, nil) when no active record exists.
	FindActiveByUserAndTechnology(ctx context.Context, userID, technologyID string) (*Skill, error)
	Insert(ctx context.Context, skill *Skill) (int64, error)
	Update(ctx context.Context, skill *Skill) error
	// ListActiveByUser filters by technologyIDs when it is non-empty.
	ListActiveByUser(ctx context.Context, userID string, technologyIDs []string) ([]Skill, error)
	// ListHistory returns every record for the pair, newest first.
	ListHistory(ctx context.Context, userID, technologyID string) ([]Skill, error)
}

type SkillUsecase interface {
	AddOrUpdateSkill(ctx context.Context, skill *Skill, caller *Caller) (*Skill, error)
	GetUserSkill(ctx context.Context, techID string, caller *Caller) (*Skill, error)
	GetUserSkillForUser(ctx context.Context, techID string, user *User) (*Skill, error)
	ImportUserSkills(ctx context.Context, records []ImportUserSkillRecord, caller *Caller) (*ImportResult, error)
	ListUserSkills(ctx context.Context, caller *Caller) ([]Skill, error)
	GetUserSkillHistory(ctx context.Context, techID string, caller *Caller) ([]Skill, error)
}

// IntPtr is a convenience for building skills with a literal value.
func IntPtr(v int) *int {
	return &v
}
