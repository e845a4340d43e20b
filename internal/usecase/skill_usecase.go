package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"techgallery-backend/internal/domain"
	"techgallery-backend/pkg/apperror"
	"techgallery-backend/pkg/logger"
	"techgallery-backend/pkg/security"
	"techgallery-backend/pkg/skillfeed"
	"techgallery-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type skillUsecase struct {
	skillRepo domain.SkillRepository
	users     domain.UserDirectory
	techs     domain.TechnologyCatalog
	validate  *validator.Validate
	now       func() time.Time
}

// NewSkillUsecase expects validate to carry the custom tags of
// validation.RegisterValidators.
func NewSkillUsecase(
	skillRepo domain.SkillRepository,
	users domain.UserDirectory,
	techs domain.TechnologyCatalog,
	validate *validator.Validate,
) domain.SkillUsecase {
	return &skillUsecase{
		skillRepo: skillRepo,
		users:     users,
		techs:     techs,
		validate:  validate,
		now:       time.Now,
	}
}

func (u *skillUsecase) AddOrUpdateSkill(ctx context.Context, skill *domain.Skill, caller *domain.Caller) (*domain.Skill, error) {
	logger.Log.Infow("Starting creating or updating skill")

	user, err := u.validateInputs(ctx, skill, caller)
	if err != nil {
		return nil, err
	}

	tech, err := u.techs.GetByID(ctx, skill.TechnologyID)
	if err != nil {
		return nil, err
	}
	if tech == nil {
		return nil, apperror.NotFound(domain.MsgTechnologyNotExists)
	}

	return u.replaceSkill(ctx, user, tech, *skill.Value)
}

// validateInputs applies the add-or-update checks in order; the first
// failing rule decides the error.
func (u *skillUsecase) validateInputs(ctx context.Context, skill *domain.Skill, caller *domain.Caller) (*domain.User, error) {
	if caller == nil || caller.IdentityToken == "" {
		return nil, apperror.BadRequest(domain.MsgNullCallerReference)
	}

	user, err := u.lookupCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.BadRequest(domain.MsgUserNotFound)
	}

	if skill == nil {
		return nil, apperror.BadRequest(domain.MsgSkillMissing)
	}

	if skill.Value == nil || u.validate.Var(*skill.Value, "skill_rating") != nil {
		return nil, apperror.BadRequest(domain.MsgSkillValueRange)
	}

	if strings.TrimSpace(skill.TechnologyID) == "" {
		return nil, apperror.BadRequest(domain.MsgTechnologyMissing)
	}

	return user, nil
}

// replaceSkill inactivates the current rating, if any, and inserts the new
// one. The two writes are not atomic: concurrent calls for the same pair
// may leave two active rows.
func (u *skillUsecase) replaceSkill(ctx context.Context, user *domain.User, tech *domain.Technology, value int) (*domain.Skill, error) {
	current, err := u.skillRepo.FindActiveByUserAndTechnology(ctx, user.ID, tech.ID)
	if err != nil {
		return nil, err
	}

	if current != nil {
		logger.Log.Infow("Inactivating skill", "skill_id", current.ID)
		inactivatedAt := u.now()
		current.Active = false
		current.InactivatedDate = &inactivatedAt
		if err := u.skillRepo.Update(ctx, current); err != nil {
			return nil, err
		}
	}

	newSkill := &domain.Skill{
		UserID:       user.ID,
		TechnologyID: tech.ID,
		Value:        domain.IntPtr(value),
		Active:       true,
	}
	id, err := u.skillRepo.Insert(ctx, newSkill)
	if err != nil {
		return nil, err
	}
	newSkill.ID = id

	logger.Log.Infow("New skill added", "skill_id", newSkill.ID, "user_id", user.ID, "technology_id", tech.ID)
	return newSkill, nil
}

// resolveCaller maps the caller of a read operation to its directory user.
func (u *skillUsecase) resolveCaller(ctx context.Context, caller *domain.Caller) (*domain.User, error) {
	if caller == nil {
		return nil, apperror.Unauthorized(domain.MsgOAuthNullUser)
	}
	if caller.IdentityToken == "" {
		return nil, apperror.BadRequest(domain.MsgCurrentUserNotFound)
	}

	user, err := u.lookupCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.BadRequest(domain.MsgUserNotInDirectory)
	}
	return user, nil
}

// lookupCaller finds the directory user of a caller with a non-empty token.
// The e-mail login lets a subject seen for the first time claim the user
// an import created for it.
func (u *skillUsecase) lookupCaller(ctx context.Context, caller *domain.Caller) (*domain.User, error) {
	login, err := skillfeed.LoginFromEmail(caller.Email)
	if err != nil {
		login = ""
	}
	return u.users.ResolveCaller(ctx, caller.IdentityToken, login, strings.TrimSpace(caller.Email))
}

func (u *skillUsecase) GetUserSkill(ctx context.Context, techID string, caller *domain.Caller) (*domain.Skill, error) {
	user, err := u.resolveCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	tech, err := u.techs.GetByID(ctx, techID)
	if err != nil {
		return nil, err
	}
	if tech == nil {
		return nil, apperror.BadRequest(domain.MsgTechnologyNotExists)
	}

	skill, err := u.skillRepo.FindActiveByUserAndTechnology(ctx, user.ID, tech.ID)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, apperror.NotFound(domain.MsgUserSkillNotExists)
	}
	return skill, nil
}

// GetUserSkillForUser returns (nil, nil) when the user has not rated the
// technology yet.
func (u *skillUsecase) GetUserSkillForUser(ctx context.Context, techID string, user *domain.User) (*domain.Skill, error) {
	if user == nil {
		return nil, apperror.Unauthorized(domain.MsgNullUserReference)
	}

	tech, err := u.techs.GetByID(ctx, techID)
	if err != nil {
		return nil, err
	}
	if tech == nil {
		return nil, apperror.NotFound(domain.MsgTechnologyNotExists)
	}

	return u.skillRepo.FindActiveByUserAndTechnology(ctx, user.ID, tech.ID)
}

func (u *skillUsecase) ListUserSkills(ctx context.Context, caller *domain.Caller) ([]domain.Skill, error) {
	user, err := u.resolveCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	return u.skillRepo.ListActiveByUser(ctx, user.ID, nil)
}

func (u *skillUsecase) GetUserSkillHistory(ctx context.Context, techID string, caller *domain.Caller) ([]domain.Skill, error) {
	user, err := u.resolveCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	tech, err := u.techs.GetByID(ctx, techID)
	if err != nil {
		return nil, err
	}
	if tech == nil {
		return nil, apperror.NotFound(domain.MsgTechnologyNotExists)
	}

	return u.skillRepo.ListHistory(ctx, user.ID, tech.ID)
}

// ImportUserSkills applies a feed batch in order. The first failing record
// or pair aborts the batch; pairs written before it are kept.
func (u *skillUsecase) ImportUserSkills(ctx context.Context, records []domain.ImportUserSkillRecord, caller *domain.Caller) (*domain.ImportResult, error) {
	if _, err := u.resolveCaller(ctx, caller); err != nil {
		return nil, err
	}

	result := &domain.ImportResult{}
	for i, record := range records {
		if err := u.importRecord(ctx, i+1, record, result); err != nil {
			logger.Log.Warnw("Skill import aborted",
				"record", i+1, "records_done", result.Records, "skills_done", result.Skills, "error", err)
			security.Default().LogSkillImportAborted(ctx, record.Email, i+1, err.Error())
			return result, err
		}
		result.Records++
	}

	logger.Log.Infow("User skills imported", "records", result.Records, "skills", result.Skills)
	return result, nil
}

func (u *skillUsecase) importRecord(ctx context.Context, n int, record domain.ImportUserSkillRecord, result *domain.ImportResult) error {
	if err := u.validate.Struct(record); err != nil {
		return apperror.BadRequestWrap(
			fmt.Sprintf("%s #%d: %s", domain.MsgInvalidImportRecord, n, validation.Message(err)), err)
	}

	login, err := skillfeed.LoginFromEmail(record.Email)
	if err != nil {
		return apperror.BadRequestWrap(fmt.Sprintf("%s #%d: %v", domain.MsgInvalidImportRecord, n, err), err)
	}

	ratings, err := skillfeed.ParseEntries(record.TechSkill...)
	if err != nil {
		return apperror.BadRequestWrap(fmt.Sprintf("%s in record #%d (%s): %v", domain.MsgMalformedImportEntry, n, record.Email, err), err)
	}

	for _, rating := range ratings {
		if u.validate.Var(rating.Value, "skill_rating") != nil {
			return apperror.BadRequest(fmt.Sprintf("%s (%s=%d)", domain.MsgSkillValueRange, rating.TechnologyID, rating.Value))
		}
	}

	user, err := u.users.SyncByLogin(ctx, login, record.Email)
	if err != nil {
		return err
	}

	for _, rating := range ratings {
		tech, err := u.techs.GetByID(ctx, rating.TechnologyID)
		if err != nil {
			return err
		}
		if tech == nil {
			return apperror.NotFound(fmt.Sprintf("%s (%s)", domain.MsgTechnologyNotExists, rating.TechnologyID))
		}

		if _, err := u.replaceSkill(ctx, user, tech, rating.Value); err != nil {
			return err
		}
		result.Skills++
	}

	security.Default().LogSkillImport(ctx, record.Email, user.ID, len(ratings))
	return nil
}
