package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/practicecoach-backend/internal/data/repos/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type GoalRepo = practice.GoalRepo
type PracticeGoalRepo = practice.PracticeGoalRepo
type RepertoireRepo = practice.RepertoireRepo
type SkillRepo = practice.SkillRepo
type PreferenceRepo = practice.PreferenceRepo
type SessionRepo = practice.SessionRepo

// Repos is every repository the service layer needs.
type Repos struct {
	Goals         GoalRepo
	PracticeGoals PracticeGoalRepo
	Repertoire    RepertoireRepo
	Skills        SkillRepo
	Preferences   PreferenceRepo
	Sessions      SessionRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Goals:         practice.NewGoalRepo(db, log),
		PracticeGoals: practice.NewPracticeGoalRepo(db, log),
		Repertoire:    practice.NewRepertoireRepo(db, log),
		Skills:        practice.NewSkillRepo(db, log),
		Preferences:   practice.NewPreferenceRepo(db, log),
		Sessions:      practice.NewSessionRepo(db, log),
	}
}
