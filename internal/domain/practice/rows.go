package practice

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GoalRow stores every Goal variant behind a type discriminator with the
// variant fields as a JSON payload.
type GoalRow struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;not null;index" json:"user_id"`
	Type      string         `gorm:"column:type;not null;index" json:"type"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GoalRow) TableName() string { return "practice_goal_item" }

func (r *GoalRow) ToGoal() (Goal, error) {
	meta := GoalMeta{ID: r.ID.String(), UserID: r.UserID, CreatedAt: r.CreatedAt}
	payload := []byte(r.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	switch GoalType(r.Type) {
	case GoalNewPiece:
		var g NewPieceGoal
		if err := json.Unmarshal(payload, &g); err != nil {
			return nil, fmt.Errorf("decode newPiece goal %s: %w", r.ID, err)
		}
		g.GoalMeta = meta
		return g, nil
	case GoalTechnique:
		var g TechniqueGoal
		if err := json.Unmarshal(payload, &g); err != nil {
			return nil, fmt.Errorf("decode technique goal %s: %w", r.ID, err)
		}
		g.GoalMeta = meta
		return g, nil
	case GoalListening:
		var g ListeningGoal
		if err := json.Unmarshal(payload, &g); err != nil {
			return nil, fmt.Errorf("decode listening goal %s: %w", r.ID, err)
		}
		g.GoalMeta = meta
		return g, nil
	case GoalRepertoire:
		var g RepertoireGoal
		if err := json.Unmarshal(payload, &g); err != nil {
			return nil, fmt.Errorf("decode repertoire goal %s: %w", r.ID, err)
		}
		g.GoalMeta = meta
		return g, nil
	default:
		return nil, fmt.Errorf("goal %s: unknown type %q", r.ID, r.Type)
	}
}

// NewGoalRow is the inverse of ToGoal, used by seeding and tests.
func NewGoalRow(userID string, g Goal) (*GoalRow, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(g.GoalID())
	if err != nil {
		id = uuid.New()
	}
	return &GoalRow{ID: id, UserID: userID, Type: string(g.Type()), Payload: datatypes.JSON(raw)}, nil
}

type PracticeGoalRow struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string         `gorm:"column:user_id;not null;index" json:"user_id"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	GoalType        string         `gorm:"column:goal_type;not null" json:"goal_type"`
	SpecificDetails string         `gorm:"column:specific_details;type:text" json:"specific_details,omitempty"`
	StartDate       time.Time      `gorm:"column:start_date" json:"start_date"`
	EndDate         time.Time      `gorm:"column:end_date" json:"end_date"`
	Status          string         `gorm:"column:status;not null;default:'active';index" json:"status"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PracticeGoalRow) TableName() string { return "practice_goal" }

func (r *PracticeGoalRow) ToPracticeGoal() *PracticeGoal {
	return &PracticeGoal{
		ID:              r.ID.String(),
		UserID:          r.UserID,
		Title:           r.Title,
		GoalType:        PracticeGoalType(r.GoalType),
		SpecificDetails: r.SpecificDetails,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Status:          r.Status,
	}
}

type RepertoirePieceRow struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string         `gorm:"column:user_id;not null;index" json:"user_id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	AddedAt      time.Time      `gorm:"column:added_at" json:"added_at"`
	LastReviewed *time.Time     `gorm:"column:last_reviewed" json:"last_reviewed,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RepertoirePieceRow) TableName() string { return "repertoire_piece" }

func (r *RepertoirePieceRow) ToPiece() RepertoirePiece {
	return RepertoirePiece{
		ID:           r.ID.String(),
		UserID:       r.UserID,
		Name:         r.Name,
		AddedAt:      r.AddedAt,
		LastReviewed: r.LastReviewed,
	}
}

type ScaleSkillRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;not null;uniqueIndex:idx_scale_skill_user_key" json:"user_id"`
	Key       string    `gorm:"column:key;not null;uniqueIndex:idx_scale_skill_user_key" json:"key"`
	Scales    int       `gorm:"column:scales;not null;default:0" json:"scales"`
	Chords    int       `gorm:"column:chords;not null;default:0" json:"chords"`
	Arpeggios int       `gorm:"column:arpeggios;not null;default:0" json:"arpeggios"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ScaleSkillRow) TableName() string { return "scale_skill" }

func (r *ScaleSkillRow) ToScaleSkill() ScaleSkill {
	return ScaleSkill{Key: r.Key, Scales: r.Scales, Chords: r.Chords, Arpeggios: r.Arpeggios}
}

type EarTrainingRow struct {
	UserID    string         `gorm:"column:user_id;primaryKey" json:"user_id"`
	Intervals datatypes.JSON `gorm:"column:intervals" json:"intervals,omitempty"`
	Chords    datatypes.JSON `gorm:"column:chords" json:"chords,omitempty"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (EarTrainingRow) TableName() string { return "ear_training" }

func (r *EarTrainingRow) ToEarTraining() (*EarTrainingSkills, error) {
	out := &EarTrainingSkills{}
	if len(r.Intervals) > 0 {
		if err := json.Unmarshal(r.Intervals, &out.Intervals); err != nil {
			return nil, fmt.Errorf("decode intervals: %w", err)
		}
	}
	if len(r.Chords) > 0 {
		if err := json.Unmarshal(r.Chords, &out.Chords); err != nil {
			return nil, fmt.Errorf("decode chords: %w", err)
		}
	}
	return out, nil
}

type UserPreferenceRow struct {
	UserID               string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	DefaultSessionLength int       `gorm:"column:default_session_length;not null;default:60" json:"default_session_length"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

func (UserPreferenceRow) TableName() string { return "user_preference" }

// SessionRow is the session log entry written when a Draft is committed.
type SessionRow struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string         `gorm:"column:user_id;not null;index" json:"user_id"`
	Activities    datatypes.JSON `gorm:"column:activities" json:"activities"`
	TotalDuration int            `gorm:"column:total_duration;not null" json:"total_duration"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (SessionRow) TableName() string { return "practice_session" }

func NewSessionRow(s *Session) (*SessionRow, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	raw, err := MarshalActivities(s.Activities)
	if err != nil {
		return nil, err
	}
	return &SessionRow{
		ID:            id,
		UserID:        s.UserID,
		Activities:    datatypes.JSON(raw),
		TotalDuration: s.TotalDuration,
		CreatedAt:     s.CreatedAt,
	}, nil
}

func (r *SessionRow) ToSession() (*Session, error) {
	var acts []Activity
	if len(r.Activities) > 0 {
		if err := json.Unmarshal(r.Activities, &acts); err != nil {
			return nil, fmt.Errorf("decode session %s activities: %w", r.ID, err)
		}
	}
	return &Session{
		ID:            r.ID.String(),
		UserID:        r.UserID,
		Activities:    acts,
		TotalDuration: r.TotalDuration,
		CreatedAt:     r.CreatedAt,
	}, nil
}
