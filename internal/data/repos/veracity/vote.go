package veracity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type VoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ConsensusVote) ([]*types.ConsensusVote, error)
	ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.ConsensusVote, error)
}

type voteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoteRepo(db *gorm.DB, baseLog *logger.Logger) VoteRepo {
	return &voteRepo{db: db, log: baseLog.With("repo", "VoteRepo")}
}

func (r *voteRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ConsensusVote) ([]*types.ConsensusVote, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ConsensusVote{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *voteRepo) ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.ConsensusVote, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ConsensusVote
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
