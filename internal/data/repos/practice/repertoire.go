package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type RepertoireRepo interface {
	ListByUser(dbc dbctx.Context, userID string) ([]types.RepertoirePiece, error)
	Create(dbc dbctx.Context, piece *types.RepertoirePiece) (*types.RepertoirePiece, error)
}

type repertoireRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepertoireRepo(db *gorm.DB, baseLog *logger.Logger) RepertoireRepo {
	return &repertoireRepo{db: db, log: baseLog.With("repo", "RepertoireRepo")}
}

func (r *repertoireRepo) ListByUser(dbc dbctx.Context, userID string) ([]types.RepertoirePiece, error) {
	if userID == "" {
		return []types.RepertoirePiece{}, nil
	}
	var rows []types.RepertoirePieceRow
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.RepertoirePiece, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToPiece())
	}
	return out, nil
}

func (r *repertoireRepo) Create(dbc dbctx.Context, piece *types.RepertoirePiece) (*types.RepertoirePiece, error) {
	if piece == nil {
		return nil, nil
	}
	id, err := uuid.Parse(piece.ID)
	if err != nil {
		id = uuid.New()
	}
	now := time.Now().UTC()
	added := piece.AddedAt
	if added.IsZero() {
		added = now
	}
	row := &types.RepertoirePieceRow{
		ID:           id,
		UserID:       piece.UserID,
		Name:         piece.Name,
		AddedAt:      added,
		LastReviewed: piece.LastReviewed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	p := row.ToPiece()
	return &p, nil
}
