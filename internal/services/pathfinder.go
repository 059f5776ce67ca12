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
	MaxPathDepth     = 10
	DefaultPathDepth = 6

	// DefaultMinVeracity is the traversal threshold applied when the
	// caller does not supply one.
	DefaultMinVeracity = 0.5
)

// PathResult is the reconstructed shortest path between two nodes.
// TotalWeight is the product of every traversed node and edge weight,
// reflecting confidence attenuation over the chain.
type PathResult struct {
	Found       bool          `json:"found"`
	Nodes       []*types.Node `json:"nodes"`
	Edges       []*types.Edge `json:"edges"`
	PathLength  int           `json:"path_length"`
	TotalWeight float64       `json:"total_weight"`
}

type PathFinder interface {
	FindPath(ctx context.Context, sourceID, targetID uuid.UUID, maxDepth int, minVeracity float64) (*PathResult, error)
}

type pathFinder struct {
	store store.GraphStore
	log   *logger.Logger
}

func NewPathFinder(st store.GraphStore, log *logger.Logger) PathFinder {
	return &pathFinder{store: st, log: log.With("service", "PathFinder")}
}

// pathState is one frontier entry: the full path taken to reach a node and
// the running weight product (nodes and edges, endpoints included). Cycle
// prevention is path-local, so the same node may be reached again on a
// different path by the opposite frontier.
type pathState struct {
	nodes  []uuid.UUID
	edges  []uuid.UUID
	weight float64
}

func (p *pathState) onPath(id uuid.UUID) bool {
	for _, n := range p.nodes {
		if n == id {
			return true
		}
	}
	return false
}

func (f *pathFinder) FindPath(ctx context.Context, sourceID, targetID uuid.UUID, maxDepth int, minVeracity float64) (*PathResult, error) {
	if maxDepth == 0 {
		maxDepth = DefaultPathDepth
	}
	if maxDepth < 1 || maxDepth > MaxPathDepth {
		return nil, fmt.Errorf("maxDepth %d outside [1,%d]: %w", maxDepth, MaxPathDepth, pkgerrors.ErrInvalidParameter)
	}
	if minVeracity < 0 || minVeracity > 1 {
		return nil, fmt.Errorf("minVeracity %v outside [0,1]: %w", minVeracity, pkgerrors.ErrInvalidParameter)
	}

	src, err := f.store.GetNode(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	dst, err := f.store.GetNode(ctx, targetID)
	if err != nil {
		return nil, err
	}

	nodeCache := map[uuid.UUID]*types.Node{src.ID: src, dst.ID: dst}
	edgeCache := map[uuid.UUID]*types.Edge{}

	if sourceID == targetID {
		return &PathResult{
			Found:       true,
			Nodes:       []*types.Node{src},
			Edges:       []*types.Edge{},
			PathLength:  0,
			TotalWeight: src.Weight,
		}, nil
	}

	walk := func(base *pathState, edge *types.Edge, next *types.Node) *pathState {
		nodes := make([]uuid.UUID, len(base.nodes)+1)
		copy(nodes, base.nodes)
		nodes[len(base.nodes)] = next.ID
		edges := make([]uuid.UUID, len(base.edges)+1)
		copy(edges, base.edges)
		edges[len(base.edges)] = edge.ID
		return &pathState{
			nodes:  nodes,
			edges:  edges,
			weight: base.weight * edge.Weight * next.Weight,
		}
	}

	// expand advances one frontier by a level, the forward side following
	// outgoing edges and the backward side incoming ones.
	expand := func(frontier map[uuid.UUID]*pathState, visited map[uuid.UUID]*pathState, forward bool) (map[uuid.UUID]*pathState, error) {
		next := map[uuid.UUID]*pathState{}
		for nodeID, state := range frontier {
			var edges []*types.Edge
			var err error
			if forward {
				edges, err = f.store.OutgoingEdges(ctx, nodeID, types.EdgeFilter{MinWeight: minVeracity})
			} else {
				edges, err = f.store.IncomingEdges(ctx, nodeID, types.EdgeFilter{MinWeight: minVeracity})
			}
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				neighborID := e.TargetNodeID
				if !forward {
					neighborID = e.SourceNodeID
				}
				if state.onPath(neighborID) {
					continue
				}
				neighbor, ok := nodeCache[neighborID]
				if !ok {
					neighbor, err = f.store.GetNode(ctx, neighborID)
					if err != nil {
						return nil, err
					}
					nodeCache[neighborID] = neighbor
				}
				if neighbor.Weight < minVeracity {
					continue
				}
				if _, seen := visited[neighborID]; seen {
					continue
				}
				edgeCache[e.ID] = e
				cand := walk(state, e, neighbor)
				// Same-level duplicates keep the heavier path so the
				// minimal-length tie breaks toward higher total weight.
				if prev, dup := next[neighborID]; !dup || cand.weight > prev.weight {
					next[neighborID] = cand
				}
			}
		}
		for id, st := range next {
			visited[id] = st
		}
		return next, nil
	}

	fwdVisited := map[uuid.UUID]*pathState{src.ID: {nodes: []uuid.UUID{src.ID}, weight: src.Weight}}
	bwdVisited := map[uuid.UUID]*pathState{dst.ID: {nodes: []uuid.UUID{dst.ID}, weight: dst.Weight}}
	fwdFrontier := map[uuid.UUID]*pathState{src.ID: fwdVisited[src.ID]}
	bwdFrontier := map[uuid.UUID]*pathState{dst.ID: bwdVisited[dst.ID]}

	meet := func(expanded map[uuid.UUID]*pathState, other map[uuid.UUID]*pathState, expandedIsForward bool) *PathResult {
		var best *PathResult
		for id, near := range expanded {
			far, ok := other[id]
			if !ok {
				continue
			}
			fwdHalf, bwdHalf := near, far
			if !expandedIsForward {
				fwdHalf, bwdHalf = far, near
			}
			length := len(near.edges) + len(far.edges)
			if length > maxDepth {
				continue
			}
			// The meeting node's weight sits in both halves.
			weight := near.weight * far.weight / nodeCache[id].Weight
			if best != nil && (best.PathLength < length ||
				(best.PathLength == length && best.TotalWeight >= weight)) {
				continue
			}
			if res := f.assemble(fwdHalf, bwdHalf, nodeCache, edgeCache, length, weight); res != nil {
				best = res
			}
		}
		return best
	}

	depth := 0
	for len(fwdFrontier) > 0 && len(bwdFrontier) > 0 && depth < maxDepth {
		// Expand the smaller frontier first to keep the search balanced.
		forward := len(fwdFrontier) <= len(bwdFrontier)
		var err error
		if forward {
			fwdFrontier, err = expand(fwdFrontier, fwdVisited, true)
			if err != nil {
				return nil, err
			}
			if res := meet(fwdFrontier, bwdVisited, true); res != nil {
				return res, nil
			}
		} else {
			bwdFrontier, err = expand(bwdFrontier, bwdVisited, false)
			if err != nil {
				return nil, err
			}
			if res := meet(bwdFrontier, fwdVisited, false); res != nil {
				return res, nil
			}
		}
		depth++
	}

	return &PathResult{Found: false, Nodes: []*types.Node{}, Edges: []*types.Edge{}}, nil
}

// assemble stitches the two half-paths at the meeting node. The near half
// runs source-outward, the far half target-outward and is reversed.
func (f *pathFinder) assemble(near, far *pathState, nodeCache map[uuid.UUID]*types.Node, edgeCache map[uuid.UUID]*types.Edge, length int, weight float64) *PathResult {
	nodeIDs := make([]uuid.UUID, 0, len(near.nodes)+len(far.nodes)-1)
	nodeIDs = append(nodeIDs, near.nodes...)
	for i := len(far.nodes) - 2; i >= 0; i-- {
		nodeIDs = append(nodeIDs, far.nodes[i])
	}
	edgeIDs := make([]uuid.UUID, 0, length)
	edgeIDs = append(edgeIDs, near.edges...)
	for i := len(far.edges) - 1; i >= 0; i-- {
		edgeIDs = append(edgeIDs, far.edges[i])
	}

	// A node repeated across the two halves would not be a simple path;
	// reject by signalling no meet, the caller keeps searching.
	seen := map[uuid.UUID]struct{}{}
	for _, id := range nodeIDs {
		if _, dup := seen[id]; dup {
			return nil
		}
		seen[id] = struct{}{}
	}

	nodes := make([]*types.Node, len(nodeIDs))
	for i, id := range nodeIDs {
		nodes[i] = nodeCache[id]
	}
	edges := make([]*types.Edge, len(edgeIDs))
	for i, id := range edgeIDs {
		edges[i] = edgeCache[id]
	}
	return &PathResult{
		Found:       true,
		Nodes:       nodes,
		Edges:       edges,
		PathLength:  length,
		TotalWeight: weight,
	}
}
