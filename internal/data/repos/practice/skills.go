package practice

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type SkillRepo interface {
	ListScaleSkills(dbc dbctx.Context, userID string) ([]types.ScaleSkill, error)
	UpsertScaleSkill(dbc dbctx.Context, userID string, skill types.ScaleSkill) error
	GetEarTraining(dbc dbctx.Context, userID string) (*types.EarTrainingSkills, error)
	UpsertEarTraining(dbc dbctx.Context, userID string, skills types.EarTrainingSkills) error
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return &skillRepo{db: db, log: baseLog.With("repo", "SkillRepo")}
}

func (r *skillRepo) ListScaleSkills(dbc dbctx.Context, userID string) ([]types.ScaleSkill, error) {
	if userID == "" {
		return []types.ScaleSkill{}, nil
	}
	var rows []types.ScaleSkillRow
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.ScaleSkill, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToScaleSkill())
	}
	return out, nil
}

// UpsertScaleSkill overwrites the BPM values recorded for one key.
func (r *skillRepo) UpsertScaleSkill(dbc dbctx.Context, userID string, skill types.ScaleSkill) error {
	if userID == "" || skill.Key == "" {
		return nil
	}
	row := &types.ScaleSkillRow{
		ID:        uuid.New(),
		UserID:    userID,
		Key:       skill.Key,
		Scales:    skill.Scales,
		Chords:    skill.Chords,
		Arpeggios: skill.Arpeggios,
		UpdatedAt: time.Now().UTC(),
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"scales", "chords", "arpeggios", "updated_at"}),
	}).Create(row).Error
}

// GetEarTraining returns nil when the user has no ear-training record.
func (r *skillRepo) GetEarTraining(dbc dbctx.Context, userID string) (*types.EarTrainingSkills, error) {
	if userID == "" {
		return nil, nil
	}
	var rows []types.EarTrainingRow
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ToEarTraining()
}

func (r *skillRepo) UpsertEarTraining(dbc dbctx.Context, userID string, skills types.EarTrainingSkills) error {
	if userID == "" {
		return nil
	}
	intervals, err := json.Marshal(nonNil(skills.Intervals))
	if err != nil {
		return err
	}
	chords, err := json.Marshal(nonNil(skills.Chords))
	if err != nil {
		return err
	}
	row := &types.EarTrainingRow{
		UserID:    userID,
		Intervals: datatypes.JSON(intervals),
		Chords:    datatypes.JSON(chords),
		UpdatedAt: time.Now().UTC(),
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"intervals", "chords", "updated_at"}),
	}).Create(row).Error
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
