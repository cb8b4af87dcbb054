package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
)

// SeedRawGoal inserts a goal row as-is, bypassing Goal encoding, so tests can
// plant rows the decoder rejects.
func SeedRawGoal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, goalType, payload string) *types.GoalRow {
	tb.Helper()
	now := time.Now().UTC()
	row := &types.GoalRow{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      goalType,
		Payload:   datatypes.JSON(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed goal row: %v", err)
	}
	return row
}
