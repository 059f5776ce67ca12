package graph

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type EdgeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Edge) ([]*types.Edge, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Edge, error)
	ListOutgoing(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error)
	ListIncoming(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error)
	UpdateWeight(ctx context.Context, tx *gorm.DB, id uuid.UUID, weight float64) error
}

type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepo(db *gorm.DB, baseLog *logger.Logger) EdgeRepo {
	return &edgeRepo{db: db, log: baseLog.With("repo", "EdgeRepo")}
}

func (r *edgeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Edge) ([]*types.Edge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Edge{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *edgeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Edge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Edge
	if err := t.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *edgeRepo) ListOutgoing(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error) {
	return r.listAdjacent(ctx, tx, "source_node_id", nodeID, filter)
}

func (r *edgeRepo) ListIncoming(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error) {
	return r.listAdjacent(ctx, tx, "target_node_id", nodeID, filter)
}

func (r *edgeRepo) listAdjacent(ctx context.Context, tx *gorm.DB, column string, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Edge
	if nodeID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(ctx).Where(column+" = ?", nodeID)
	if filter.EdgeTypeID != "" {
		q = q.Where("edge_type_id = ?", filter.EdgeTypeID)
	}
	if filter.MinWeight > 0 {
		q = q.Where("weight >= ?", filter.MinWeight)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *edgeRepo) UpdateWeight(ctx context.Context, tx *gorm.DB, id uuid.UUID, weight float64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.Edge{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"weight": weight, "updated_at": gorm.Expr("now()")}).Error
}
