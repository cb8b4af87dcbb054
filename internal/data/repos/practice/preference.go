package practice

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type PreferenceRepo interface {
	Get(dbc dbctx.Context, userID string) (*types.UserPreferences, error)
	Upsert(dbc dbctx.Context, userID string, prefs types.UserPreferences) error
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{db: db, log: baseLog.With("repo", "PreferenceRepo")}
}

// Get returns nil when no preferences were stored for the user.
func (r *preferenceRepo) Get(dbc dbctx.Context, userID string) (*types.UserPreferences, error) {
	if userID == "" {
		return nil, nil
	}
	var rows []types.UserPreferenceRow
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &types.UserPreferences{DefaultSessionLength: rows[0].DefaultSessionLength}, nil
}

func (r *preferenceRepo) Upsert(dbc dbctx.Context, userID string, prefs types.UserPreferences) error {
	if userID == "" {
		return nil
	}
	row := &types.UserPreferenceRow{
		UserID:               userID,
		DefaultSessionLength: prefs.DefaultSessionLength,
		UpdatedAt:            time.Now().UTC(),
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"default_session_length", "updated_at"}),
	}).Create(row).Error
}
