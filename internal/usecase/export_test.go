package usecase

import (
	"time"

	"techgallery-backend/internal/domain"
)

// SetClock pins the time used for inactivation dates.
func SetClock(uc domain.SkillUsecase, now func() time.Time) {
	uc.(*skillUsecase).now = now
}
