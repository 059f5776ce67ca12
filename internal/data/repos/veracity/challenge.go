package veracity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type ChallengeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Challenge) ([]*types.Challenge, error)
	ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.Challenge, error)
}

type challengeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeRepo {
	return &challengeRepo{db: db, log: baseLog.With("repo", "ChallengeRepo")}
}

func (r *challengeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Challenge) ([]*types.Challenge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Challenge{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *challengeRepo) ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.Challenge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Challenge
	if targetID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
