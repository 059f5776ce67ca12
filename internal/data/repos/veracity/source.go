package veracity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type SourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Source) ([]*types.Source, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Source, error)
	UpdateCredibility(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64) error
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{db: db, log: baseLog.With("repo", "SourceRepo")}
}

func (r *sourceRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Source) ([]*types.Source, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Source{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *sourceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Source, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Source
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sourceRepo) UpdateCredibility(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.Source{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"credibility_score": score, "updated_at": gorm.Expr("now()")}).Error
}
