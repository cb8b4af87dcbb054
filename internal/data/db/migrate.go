package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// snapshot stores read by the brief builder
		&practice.GoalRow{},
		&practice.PracticeGoalRow{},
		&practice.RepertoirePieceRow{},
		&practice.ScaleSkillRow{},
		&practice.EarTrainingRow{},
		&practice.UserPreferenceRow{},

		// committed sessions
		&practice.SessionRow{},
	)
}
