package validation

import (
	"github.com/go-playground/validator/v10"

	"techgallery-backend/internal/domain"
)

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("skill_rating", SkillRating)
}

// SkillRating accepts integers inside the allowed proficiency range.
func SkillRating(fl validator.FieldLevel) bool {
	val := fl.Field().Int()
	return val >= domain.MinSkillValue && val <= domain.MaxSkillValue
}
