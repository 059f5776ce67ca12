package graph

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type NodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Node) ([]*types.Node, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Node, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Node, error)
	UpdateWeight(ctx context.Context, tx *gorm.DB, id uuid.UUID, weight float64) error
}

type nodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	return &nodeRepo{db: db, log: baseLog.With("repo", "NodeRepo")}
}

func (r *nodeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Node) ([]*types.Node, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Node{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *nodeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Node, error) {
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

func (r *nodeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Node, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Node
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

func (r *nodeRepo) UpdateWeight(ctx context.Context, tx *gorm.DB, id uuid.UUID, weight float64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.Node{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"weight": weight, "updated_at": gorm.Expr("now()")}).Error
}
