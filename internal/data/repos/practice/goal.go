package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type GoalRepo interface {
	ListByUser(dbc dbctx.Context, userID string) ([]types.Goal, error)
	Create(dbc dbctx.Context, userID string, goal types.Goal) (*types.GoalRow, error)
}

type goalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	return &goalRepo{db: db, log: baseLog.With("repo", "GoalRepo")}
}

// ListByUser returns the user's goals oldest first. Rows with an unknown
// type are skipped and logged.
func (r *goalRepo) ListByUser(dbc dbctx.Context, userID string) ([]types.Goal, error) {
	if userID == "" {
		return []types.Goal{}, nil
	}
	var rows []types.GoalRow
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.Goal, 0, len(rows))
	for i := range rows {
		g, err := rows[i].ToGoal()
		if err != nil {
			r.log.Warn("Skipping undecodable goal", "goal_id", rows[i].ID, "error", err)
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *goalRepo) Create(dbc dbctx.Context, userID string, goal types.Goal) (*types.GoalRow, error) {
	row, err := types.NewGoalRow(userID, goal)
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
