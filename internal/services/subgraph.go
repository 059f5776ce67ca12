package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/openverity/verigraph-backend/internal/data/store"
	types "github.com/openverity/verigraph-backend/internal/domain"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

const (
	MaxSubgraphDepth     = 5
	DefaultSubgraphDepth = 2
	MaxSubgraphNodes     = 1000
	DefaultSubgraphNodes = 500
)

type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

func (d Direction) Valid() bool {
	return d == DirectionOutgoing || d == DirectionIncoming || d == DirectionBoth
}

type SubgraphResult struct {
	CenterNode *types.Node   `json:"center_node"`
	Nodes      []*types.Node `json:"nodes"`
	Edges      []*types.Edge `json:"edges"`
	Truncated  bool          `json:"truncated"`
}

type SubgraphExpander interface {
	GetSubgraph(ctx context.Context, nodeID uuid.UUID, depth int, direction Direction, minVeracity float64, maxNodes int) (*SubgraphResult, error)
}

type subgraphExpander struct {
	store store.GraphStore
	cal   Calibration
	log   *logger.Logger
}

func NewSubgraphExpander(st store.GraphStore, cal Calibration, log *logger.Logger) SubgraphExpander {
	return &subgraphExpander{store: st, cal: cal, log: log.With("service", "SubgraphExpander")}
}

// GetSubgraph expands the neighborhood of nodeID level by level. A node
// reached at depth d carries relevance baseRelevance * decayFactor^d and is
// dropped below the relevance floor even when reachable. The maxNodes cap
// is a resource guard, not a correctness bound: expansion stops once it is
// hit, keeping first-reached nodes in canonical BFS level order, so results
// past the cap are order dependent by design of the guard.
func (s *subgraphExpander) GetSubgraph(ctx context.Context, nodeID uuid.UUID, depth int, direction Direction, minVeracity float64, maxNodes int) (*SubgraphResult, error) {
	if depth < 0 || depth > MaxSubgraphDepth {
		return nil, fmt.Errorf("depth %d outside [0,%d]: %w", depth, MaxSubgraphDepth, pkgerrors.ErrInvalidParameter)
	}
	if direction == "" {
		direction = DirectionBoth
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("direction %q: %w", direction, pkgerrors.ErrInvalidParameter)
	}
	if minVeracity < 0 || minVeracity > 1 {
		return nil, fmt.Errorf("minVeracity %v outside [0,1]: %w", minVeracity, pkgerrors.ErrInvalidParameter)
	}
	if maxNodes == 0 {
		maxNodes = DefaultSubgraphNodes
	}
	if maxNodes < 1 || maxNodes > MaxSubgraphNodes {
		return nil, fmt.Errorf("maxNodes %d outside [1,%d]: %w", maxNodes, MaxSubgraphNodes, pkgerrors.ErrInvalidParameter)
	}

	center, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	res := &SubgraphResult{
		CenterNode: center,
		Nodes:      []*types.Node{},
		Edges:      []*types.Edge{},
	}
	if depth == 0 {
		return res, nil
	}

	visited := map[uuid.UUID]struct{}{center.ID: {}}
	seenEdges := map[uuid.UUID]struct{}{}
	res.Nodes = append(res.Nodes, center)

	frontier := []uuid.UUID{center.ID}
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		relevance := s.cal.SubgraphBaseRelevance * math.Pow(s.cal.SubgraphDecayFactor, float64(d))
		if relevance < s.cal.SubgraphRelevanceFloor {
			break
		}
		var next []uuid.UUID
		for _, id := range frontier {
			edges, err := s.adjacent(ctx, id, direction, minVeracity)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				neighborID := e.TargetNodeID
				if neighborID == id {
					neighborID = e.SourceNodeID
				}
				if _, ok := visited[neighborID]; ok {
					// Keep the closing edge even when both ends are
					// already in the result.
					if _, dup := seenEdges[e.ID]; !dup {
						seenEdges[e.ID] = struct{}{}
						res.Edges = append(res.Edges, e)
					}
					continue
				}
				if len(res.Nodes) >= maxNodes {
					res.Truncated = true
					continue
				}
				neighbor, err := s.store.GetNode(ctx, neighborID)
				if err != nil {
					return nil, err
				}
				if neighbor.Weight < minVeracity {
					continue
				}
				visited[neighborID] = struct{}{}
				res.Nodes = append(res.Nodes, neighbor)
				if _, dup := seenEdges[e.ID]; !dup {
					seenEdges[e.ID] = struct{}{}
					res.Edges = append(res.Edges, e)
				}
				next = append(next, neighborID)
			}
		}
		frontier = next
	}

	return res, nil
}

func (s *subgraphExpander) adjacent(ctx context.Context, nodeID uuid.UUID, direction Direction, minVeracity float64) ([]*types.Edge, error) {
	filter := types.EdgeFilter{MinWeight: minVeracity}
	switch direction {
	case DirectionOutgoing:
		return s.store.OutgoingEdges(ctx, nodeID, filter)
	case DirectionIncoming:
		return s.store.IncomingEdges(ctx, nodeID, filter)
	default:
		out, err := s.store.OutgoingEdges(ctx, nodeID, filter)
		if err != nil {
			return nil, err
		}
		in, err := s.store.IncomingEdges(ctx, nodeID, filter)
		if err != nil {
			return nil, err
		}
		return append(out, in...), nil
	}
}
