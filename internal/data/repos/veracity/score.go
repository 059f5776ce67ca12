package veracity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type ScoreRecordRepo interface {
	GetByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) (*types.VeracityScoreRecord, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.VeracityScoreRecord) error
}

type scoreRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRecordRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRecordRepo {
	return &scoreRecordRepo{db: db, log: baseLog.With("repo", "ScoreRecordRepo")}
}

func (r *scoreRecordRepo) GetByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) (*types.VeracityScoreRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.VeracityScoreRecord
	if targetID == uuid.Nil {
		return nil, nil
	}
	if err := t.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *scoreRecordRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.VeracityScoreRecord) error {
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
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "target_type"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score",
				"evidence_count",
				"consensus_score",
				"challenge_count",
				"open_challenge_count",
				"temporal_decay_factor",
				"calculated_at",
			}),
		}).
		Create(row).Error
}
