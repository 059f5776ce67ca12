package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openverity/verigraph-backend/internal/data/store"
	types "github.com/openverity/verigraph-backend/internal/domain"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

const (
	MaxWalkDepth     = 5
	DefaultWalkDepth = 3
)

// RelatedPath is one distinct simple path of same-typed edges, with the
// accumulated weight being the product of its edge weights.
type RelatedPath struct {
	NodeIDs []uuid.UUID `json:"node_ids"`
	EdgeIDs []uuid.UUID `json:"edge_ids"`
	Weight  float64     `json:"weight"`
}

type RelatedNodesResult struct {
	Nodes []*types.Node `json:"nodes"`
	Edges []*types.Edge `json:"edges"`
	Paths []RelatedPath `json:"paths"`
}

// RelationshipWalker enumerates every distinct simple path of one edge
// type, not just a spanning tree: callers reason about the multiplicity of
// independent corroborating relationships, not bare reachability.
type RelationshipWalker interface {
	FindRelatedNodes(ctx context.Context, nodeID uuid.UUID, edgeTypeID string, depth int, minVeracity float64) (*RelatedNodesResult, error)
}

type relationshipWalker struct {
	store store.GraphStore
	log   *logger.Logger
}

func NewRelationshipWalker(st store.GraphStore, log *logger.Logger) RelationshipWalker {
	return &relationshipWalker{store: st, log: log.With("service", "RelationshipWalker")}
}

func (w *relationshipWalker) FindRelatedNodes(ctx context.Context, nodeID uuid.UUID, edgeTypeID string, depth int, minVeracity float64) (*RelatedNodesResult, error) {
	if edgeTypeID == "" {
		return nil, fmt.Errorf("edgeTypeId required: %w", pkgerrors.ErrInvalidParameter)
	}
	if depth == 0 {
		depth = DefaultWalkDepth
	}
	if depth < 1 || depth > MaxWalkDepth {
		return nil, fmt.Errorf("depth %d outside [1,%d]: %w", depth, MaxWalkDepth, pkgerrors.ErrInvalidParameter)
	}
	if minVeracity < 0 || minVeracity > 1 {
		return nil, fmt.Errorf("minVeracity %v outside [0,1]: %w", minVeracity, pkgerrors.ErrInvalidParameter)
	}

	start, err := w.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	res := &RelatedNodesResult{
		Nodes: []*types.Node{},
		Edges: []*types.Edge{},
		Paths: []RelatedPath{},
	}
	seenNodes := map[uuid.UUID]struct{}{}
	seenEdges := map[uuid.UUID]struct{}{}
	filter := types.EdgeFilter{EdgeTypeID: edgeTypeID, MinWeight: minVeracity}

	// Depth-first with a path-local visited set: a node may appear on many
	// paths but never twice on the same one.
	var walk func(cur *types.Node, pathNodes []uuid.UUID, pathEdges []uuid.UUID, weight float64) error
	walk = func(cur *types.Node, pathNodes []uuid.UUID, pathEdges []uuid.UUID, weight float64) error {
		if len(pathEdges) >= depth {
			return nil
		}
		edges, err := w.store.OutgoingEdges(ctx, cur.ID, filter)
		if err != nil {
			return err
		}
		for _, e := range edges {
			onPath := false
			for _, id := range pathNodes {
				if id == e.TargetNodeID {
					onPath = true
					break
				}
			}
			if onPath {
				continue
			}
			neighbor, err := w.store.GetNode(ctx, e.TargetNodeID)
			if err != nil {
				return err
			}
			if neighbor.Weight < minVeracity {
				continue
			}

			nextNodes := append(append([]uuid.UUID{}, pathNodes...), neighbor.ID)
			nextEdges := append(append([]uuid.UUID{}, pathEdges...), e.ID)
			nextWeight := weight * e.Weight

			res.Paths = append(res.Paths, RelatedPath{
				NodeIDs: nextNodes,
				EdgeIDs: nextEdges,
				Weight:  nextWeight,
			})
			if _, ok := seenNodes[neighbor.ID]; !ok {
				seenNodes[neighbor.ID] = struct{}{}
				res.Nodes = append(res.Nodes, neighbor)
			}
			if _, ok := seenEdges[e.ID]; !ok {
				seenEdges[e.ID] = struct{}{}
				res.Edges = append(res.Edges, e)
			}

			if err := walk(neighbor, nextNodes, nextEdges, nextWeight); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(start, []uuid.UUID{start.ID}, nil, 1.0); err != nil {
		return nil, err
	}
	return res, nil
}
