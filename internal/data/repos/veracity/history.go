package veracity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type HistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.VeracityHistoryEntry) error
	ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.VeracityHistoryEntry, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return &historyRepo{db: db, log: baseLog.With("repo", "HistoryRepo")}
}

func (r *historyRepo) Append(ctx context.Context, tx *gorm.DB, row *types.VeracityHistoryEntry) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *historyRepo) ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.VeracityHistoryEntry, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.VeracityHistoryEntry
	if targetID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("calculated_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
