package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type PracticeGoalRepo interface {
	GetActive(dbc dbctx.Context, userID string) (*types.PracticeGoal, error)
	Create(dbc dbctx.Context, goal *types.PracticeGoal) (*types.PracticeGoal, error)
}

type practiceGoalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeGoalRepo(db *gorm.DB, baseLog *logger.Logger) PracticeGoalRepo {
	return &practiceGoalRepo{db: db, log: baseLog.With("repo", "PracticeGoalRepo")}
}

// GetActive returns the most recently created active goal, or nil.
func (r *practiceGoalRepo) GetActive(dbc dbctx.Context, userID string) (*types.PracticeGoal, error) {
	if userID == "" {
		return nil, nil
	}
	var rows []types.PracticeGoalRow
	if err := dbc.DB(r.db).
		Where("user_id = ? AND status = ?", userID, "active").
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ToPracticeGoal(), nil
}

func (r *practiceGoalRepo) Create(dbc dbctx.Context, goal *types.PracticeGoal) (*types.PracticeGoal, error) {
	if goal == nil {
		return nil, nil
	}
	id, err := uuid.Parse(goal.ID)
	if err != nil {
		id = uuid.New()
	}
	status := goal.Status
	if status == "" {
		status = "active"
	}
	now := time.Now().UTC()
	row := &types.PracticeGoalRow{
		ID:              id,
		UserID:          goal.UserID,
		Title:           goal.Title,
		GoalType:        string(goal.GoalType),
		SpecificDetails: goal.SpecificDetails,
		StartDate:       goal.StartDate,
		EndDate:         goal.EndDate,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row.ToPracticeGoal(), nil
}
