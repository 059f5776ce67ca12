package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
)

func newTestRanking(st *memStore, t *testing.T) RankingService {
	return NewRankingService(st, DefaultCalibration(), testLogger(t))
}

func TestGetHighVeracityRelatedNodes(t *testing.T) {
	st := newMemStore()
	center := st.addNode(node(0.9))
	strong := st.addNode(node(0.9))
	mid := st.addNode(node(0.8))
	multi := st.addNode(node(0.9))

	st.addEdge(edge(center.ID, strong.ID, "supports", 0.9))
	st.addEdge(edge(center.ID, mid.ID, "supports", 0.7))
	// Two edges to the same neighbor: the ranking keeps the better one.
	st.addEdge(edge(center.ID, multi.ID, "supports", 0.5))
	st.addEdge(edge(multi.ID, center.ID, "supports", 0.9))

	r := newTestRanking(st, t)
	ranked, err := r.GetHighVeracityRelatedNodes(context.Background(), center.ID, 0, 0.7)
	if err != nil {
		t.Fatalf("GetHighVeracityRelatedNodes: %v", err)
	}

	// strong and multi both score 0.81; mid scores 0.56 and is filtered.
	if len(ranked) != 2 {
		t.Fatalf("ranked = %d neighbors, want 2", len(ranked))
	}
	for _, tn := range ranked {
		if !almostEqual(tn.Score, 0.81) {
			t.Fatalf("score = %v, want 0.81", tn.Score)
		}
		if tn.Node.ID == mid.ID {
			t.Fatal("sub-threshold neighbor leaked into ranking")
		}
	}
	// Equal scores break ties by node id for a stable order.
	if ranked[0].Node.ID.String() > ranked[1].Node.ID.String() {
		t.Fatalf("tie-break order wrong: %v before %v", ranked[0].Node.ID, ranked[1].Node.ID)
	}

	limited, err := r.GetHighVeracityRelatedNodes(context.Background(), center.ID, 1, 0.7)
	if err != nil {
		t.Fatalf("limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Node.ID != ranked[0].Node.ID {
		t.Fatalf("limit 1 returned %+v", limited)
	}
}

func TestGetHighVeracityRelatedNodesValidation(t *testing.T) {
	st := newMemStore()
	a := st.addNode(node(0.9))
	r := newTestRanking(st, t)
	ctx := context.Background()

	if _, err := r.GetHighVeracityRelatedNodes(ctx, a.ID, MaxTrustedLimit+1, 0.5); !errors.Is(err, pkgerrors.ErrInvalidParameter) {
		t.Fatalf("limit over max: got %v", err)
	}
	if _, err := r.GetHighVeracityRelatedNodes(ctx, a.ID, 5, -0.1); !errors.Is(err, pkgerrors.ErrInvalidParameter) {
		t.Fatalf("negative minVeracity: got %v", err)
	}
	if _, err := r.GetHighVeracityRelatedNodes(ctx, uuid.New(), 5, 0.5); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing node: got %v", err)
	}
}

func TestGetNodeStatistics(t *testing.T) {
	st := newMemStore()
	center := st.addNode(node(0.9))
	a := st.addNode(node(0.9))
	b := st.addNode(node(0.9))
	c := st.addNode(node(0.9))

	st.addEdge(edge(center.ID, a.ID, "supports", 0.8))
	st.addEdge(edge(center.ID, b.ID, "supports", 0.6))
	st.addEdge(edge(c.ID, center.ID, "supports", 0.4))

	r := newTestRanking(st, t)
	stats, err := r.GetNodeStatistics(context.Background(), center.ID)
	if err != nil {
		t.Fatalf("GetNodeStatistics: %v", err)
	}
	if stats.OutgoingEdges != 2 || stats.IncomingEdges != 1 || stats.TotalDegree != 3 {
		t.Fatalf("degree stats = %+v", stats)
	}
	if !almostEqual(stats.AverageEdgeWeight, 0.6) {
		t.Fatalf("average edge weight = %v, want 0.6", stats.AverageEdgeWeight)
	}
	// With the center removed, its three neighbors are disconnected.
	if stats.ConnectedComponents != 3 {
		t.Fatalf("components = %d, want 3", stats.ConnectedComponents)
	}

	// Linking two neighbors merges their clusters.
	st.addEdge(edge(a.ID, b.ID, "supports", 0.9))
	stats, err = r.GetNodeStatistics(context.Background(), center.ID)
	if err != nil {
		t.Fatalf("GetNodeStatistics after link: %v", err)
	}
	if stats.ConnectedComponents != 2 {
		t.Fatalf("components = %d, want 2 after linking neighbors", stats.ConnectedComponents)
	}
}

func TestGetNodeStatisticsIsolated(t *testing.T) {
	st := newMemStore()
	lone := st.addNode(node(0.9))

	r := newTestRanking(st, t)
	stats, err := r.GetNodeStatistics(context.Background(), lone.ID)
	if err != nil {
		t.Fatalf("GetNodeStatistics: %v", err)
	}
	if stats.TotalDegree != 0 || stats.AverageEdgeWeight != 0 || stats.ConnectedComponents != 0 {
		t.Fatalf("isolated stats = %+v", stats)
	}
}
