package practice

import (
	"gorm.io/gorm"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.Session) error
	ListRecent(dbc dbctx.Context, userID string, limit int) ([]*types.Session, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.Session) error {
	if s == nil {
		return nil
	}
	row, err := types.NewSessionRow(s)
	if err != nil {
		return err
	}
	return dbc.DB(r.db).Create(row).Error
}

// ListRecent returns up to limit sessions, newest first.
func (r *sessionRepo) ListRecent(dbc dbctx.Context, userID string, limit int) ([]*types.Session, error) {
	if userID == "" {
		return []*types.Session{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []types.SessionRow
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.Session, 0, len(rows))
	for i := range rows {
		s, err := rows[i].ToSession()
		if err != nil {
			r.log.Warn("Skipping undecodable session", "session_id", rows[i].ID, "error", err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
