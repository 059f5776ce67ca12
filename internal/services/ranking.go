package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openverity/verigraph-backend/internal/data/store"
	types "github.com/openverity/verigraph-backend/internal/domain"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

const (
	MaxTrustedLimit     = 100
	DefaultTrustedLimit = 20

	// DefaultTrustedMinVeracity is stricter than the traversal default:
	// trusted-neighbor ranking answers "who can I rely on", not "who is
	// reachable".
	DefaultTrustedMinVeracity = 0.7
)

type TrustedNeighbor struct {
	Node  *types.Node `json:"node"`
	Edge  *types.Edge `json:"edge"`
	Score float64     `json:"score"`
}

type NodeStatistics struct {
	OutgoingEdges       int     `json:"outgoing_edges"`
	IncomingEdges       int     `json:"incoming_edges"`
	TotalDegree         int     `json:"total_degree"`
	AverageEdgeWeight   float64 `json:"average_edge_weight"`
	ConnectedComponents int     `json:"connected_components"`
}

type RankingService interface {
	GetHighVeracityRelatedNodes(ctx context.Context, nodeID uuid.UUID, limit int, minVeracity float64) ([]TrustedNeighbor, error)
	GetNodeStatistics(ctx context.Context, nodeID uuid.UUID) (*NodeStatistics, error)
}

type rankingService struct {
	store store.GraphStore
	cal   Calibration
	log   *logger.Logger
}

func NewRankingService(st store.GraphStore, cal Calibration, log *logger.Logger) RankingService {
	return &rankingService{store: st, cal: cal, log: log.With("service", "RankingService")}
}

// GetHighVeracityRelatedNodes ranks one-hop neighbors by nodeWeight *
// edgeWeight. A neighbor reachable over several edges keeps its best one.
// Ties break by node id for determinism.
func (s *rankingService) GetHighVeracityRelatedNodes(ctx context.Context, nodeID uuid.UUID, limit int, minVeracity float64) ([]TrustedNeighbor, error) {
	if limit == 0 {
		limit = DefaultTrustedLimit
	}
	if limit < 1 || limit > MaxTrustedLimit {
		return nil, fmt.Errorf("limit %d outside [1,%d]: %w", limit, MaxTrustedLimit, pkgerrors.ErrInvalidParameter)
	}
	if minVeracity < 0 || minVeracity > 1 {
		return nil, fmt.Errorf("minVeracity %v outside [0,1]: %w", minVeracity, pkgerrors.ErrInvalidParameter)
	}

	if _, err := s.store.GetNode(ctx, nodeID); err != nil {
		return nil, err
	}

	outgoing, incoming, err := s.incidentEdges(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	best := map[uuid.UUID]TrustedNeighbor{}
	consider := func(neighborID uuid.UUID, e *types.Edge) error {
		neighbor, err := s.store.GetNode(ctx, neighborID)
		if err != nil {
			return err
		}
		score := neighbor.Weight * e.Weight
		if score < minVeracity {
			return nil
		}
		if prev, ok := best[neighborID]; !ok || score > prev.Score {
			best[neighborID] = TrustedNeighbor{Node: neighbor, Edge: e, Score: score}
		}
		return nil
	}
	for _, e := range outgoing {
		if err := consider(e.TargetNodeID, e); err != nil {
			return nil, err
		}
	}
	for _, e := range incoming {
		if err := consider(e.SourceNodeID, e); err != nil {
			return nil, err
		}
	}

	ranked := make([]TrustedNeighbor, 0, len(best))
	for _, tn := range best {
		ranked = append(ranked, tn)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Node.ID.String() < ranked[j].Node.ID.String()
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// GetNodeStatistics reports degree and weight metrics plus a local
// weakly-connected component count: how many separate clusters the node's
// neighborhood (within StatsComponentRadius, the node itself excluded)
// falls into. It is an isolation signal, not a global graph property.
func (s *rankingService) GetNodeStatistics(ctx context.Context, nodeID uuid.UUID) (*NodeStatistics, error) {
	if _, err := s.store.GetNode(ctx, nodeID); err != nil {
		return nil, err
	}

	outgoing, incoming, err := s.incidentEdges(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	stats := &NodeStatistics{
		OutgoingEdges: len(outgoing),
		IncomingEdges: len(incoming),
		TotalDegree:   len(outgoing) + len(incoming),
	}
	if stats.TotalDegree > 0 {
		var sum float64
		for _, e := range outgoing {
			sum += e.Weight
		}
		for _, e := range incoming {
			sum += e.Weight
		}
		stats.AverageEdgeWeight = sum / float64(stats.TotalDegree)
	}

	components, err := s.localComponents(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	stats.ConnectedComponents = components

	return stats, nil
}

func (s *rankingService) incidentEdges(ctx context.Context, nodeID uuid.UUID) (outgoing, incoming []*types.Edge, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		outgoing, e = s.store.OutgoingEdges(gctx, nodeID, types.EdgeFilter{})
		return e
	})
	g.Go(func() error {
		var e error
		incoming, e = s.store.IncomingEdges(gctx, nodeID, types.EdgeFilter{})
		return e
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return outgoing, incoming, nil
}

// localComponents runs a union-find over the nodes within the configured
// radius, with the center removed so its bridging does not collapse
// everything into one component.
func (s *rankingService) localComponents(ctx context.Context, center uuid.UUID) (int, error) {
	within := map[uuid.UUID]struct{}{}
	var localEdges []*types.Edge

	frontier := []uuid.UUID{center}
	seen := map[uuid.UUID]struct{}{center: {}}
	for d := 0; d < s.cal.StatsComponentRadius && len(frontier) > 0; d++ {
		var next []uuid.UUID
		for _, id := range frontier {
			outgoing, incoming, err := s.incidentEdges(ctx, id)
			if err != nil {
				return 0, err
			}
			for _, e := range append(outgoing, incoming...) {
				for _, endpoint := range []uuid.UUID{e.SourceNodeID, e.TargetNodeID} {
					if endpoint == center {
						continue
					}
					if _, ok := within[endpoint]; !ok {
						within[endpoint] = struct{}{}
					}
					if _, ok := seen[endpoint]; !ok {
						seen[endpoint] = struct{}{}
						next = append(next, endpoint)
					}
				}
				if e.SourceNodeID != center && e.TargetNodeID != center {
					localEdges = append(localEdges, e)
				}
			}
		}
		frontier = next
	}

	if len(within) == 0 {
		return 0, nil
	}

	parent := map[uuid.UUID]uuid.UUID{}
	var find func(uuid.UUID) uuid.UUID
	find = func(id uuid.UUID) uuid.UUID {
		p, ok := parent[id]
		if !ok || p == id {
			parent[id] = id
			return id
		}
		root := find(p)
		parent[id] = root
		return root
	}
	union := func(a, b uuid.UUID) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for id := range within {
		find(id)
	}
	for _, e := range localEdges {
		union(e.SourceNodeID, e.TargetNodeID)
	}

	roots := map[uuid.UUID]struct{}{}
	for id := range within {
		roots[find(id)] = struct{}{}
	}
	return len(roots), nil
}
