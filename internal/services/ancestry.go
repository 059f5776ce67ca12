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
	MaxAncestryDepth     = 20
	DefaultAncestryDepth = 10
)

type AncestryEntry struct {
	Node  *types.Node `json:"node"`
	Depth int         `json:"depth"`
}

// AncestryResult is the provenance chain from the starting node (depth 0)
// toward its root. CycleDetected marks a malformed loop in the chain; the
// partial chain up to the repeat is still returned.
type AncestryResult struct {
	Nodes         []*types.Node   `json:"nodes"`
	Chain         []AncestryEntry `json:"chain"`
	CycleDetected bool            `json:"cycle_detected"`
}

type AncestryTracer interface {
	GetNodeAncestors(ctx context.Context, nodeID uuid.UUID, maxDepth int) (*AncestryResult, error)
}

type ancestryTracer struct {
	store store.GraphStore
	log   *logger.Logger
}

func NewAncestryTracer(st store.GraphStore, log *logger.Logger) AncestryTracer {
	return &ancestryTracer{store: st, log: log.With("service", "AncestryTracer")}
}

func (t *ancestryTracer) GetNodeAncestors(ctx context.Context, nodeID uuid.UUID, maxDepth int) (*AncestryResult, error) {
	if maxDepth == 0 {
		maxDepth = DefaultAncestryDepth
	}
	if maxDepth < 1 || maxDepth > MaxAncestryDepth {
		return nil, fmt.Errorf("maxDepth %d outside [1,%d]: %w", maxDepth, MaxAncestryDepth, pkgerrors.ErrInvalidParameter)
	}

	cur, err := t.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	res := &AncestryResult{
		Nodes: []*types.Node{cur},
		Chain: []AncestryEntry{{Node: cur, Depth: 0}},
	}
	onChain := map[uuid.UUID]struct{}{cur.ID: {}}

	for depth := 1; depth <= maxDepth; depth++ {
		if cur.PrimarySourceID == nil || *cur.PrimarySourceID == uuid.Nil {
			break
		}
		parentID := *cur.PrimarySourceID
		if _, looped := onChain[parentID]; looped {
			// Corrupt provenance data; report it, do not crash or loop.
			t.log.Warn("provenance cycle detected", "node_id", nodeID, "repeat_id", parentID, "error", pkgerrors.ErrCycleDetected)
			res.CycleDetected = true
			break
		}
		parent, err := t.store.GetNode(ctx, parentID)
		if err != nil {
			return nil, err
		}
		res.Nodes = append(res.Nodes, parent)
		res.Chain = append(res.Chain, AncestryEntry{Node: parent, Depth: depth})
		onChain[parentID] = struct{}{}
		cur = parent
	}

	return res, nil
}
