package veracity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type EvidenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Evidence) ([]*types.Evidence, error)
	// ListByTarget returns non-invalidated evidence only; invalidated rows
	// are kept for audit but never scored.
	ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.Evidence, error)
	ListBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]*types.Evidence, error)
}

type evidenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvidenceRepo(db *gorm.DB, baseLog *logger.Logger) EvidenceRepo {
	return &evidenceRepo{db: db, log: baseLog.With("repo", "EvidenceRepo")}
}

func (r *evidenceRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Evidence) ([]*types.Evidence, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Evidence{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *evidenceRepo) ListByTarget(ctx context.Context, tx *gorm.DB, targetType types.TargetType, targetID uuid.UUID) ([]*types.Evidence, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Evidence
	if targetID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("target_type = ? AND target_id = ? AND invalidated_at IS NULL", targetType, targetID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *evidenceRepo) ListBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]*types.Evidence, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Evidence
	if sourceID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
