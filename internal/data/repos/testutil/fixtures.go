package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/openverity/verigraph-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedNode(tb testing.TB, ctx context.Context, tx *gorm.DB, label string, weight float64) *types.Node {
	tb.Helper()
	n := &types.Node{
		ID:         uuid.New(),
		Label:      label,
		Weight:     weight,
		Properties: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed node: %v", err)
	}
	return n
}

func SeedEdge(tb testing.TB, ctx context.Context, tx *gorm.DB, from, to uuid.UUID, edgeType string, weight float64) *types.Edge {
	tb.Helper()
	e := &types.Edge{
		ID:           uuid.New(),
		SourceNodeID: from,
		TargetNodeID: to,
		EdgeTypeID:   edgeType,
		Weight:       weight,
		Properties:   datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed edge: %v", err)
	}
	return e
}

func SeedSource(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, credibility float64) *types.Source {
	tb.Helper()
	s := &types.Source{
		ID:               uuid.New(),
		Name:             name,
		CredibilityScore: credibility,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed source: %v", err)
	}
	return s
}

func SeedEvidence(tb testing.TB, ctx context.Context, tx *gorm.DB, targetID, sourceID uuid.UUID, polarity string, rawWeight, confidence float64) *types.Evidence {
	tb.Helper()
	ev := &types.Evidence{
		ID:            uuid.New(),
		TargetType:    types.TargetNode,
		TargetID:      targetID,
		Polarity:      polarity,
		RawWeight:     rawWeight,
		Confidence:    confidence,
		SourceID:      sourceID,
		DisputeStatus: types.DisputeNone,
	}
	if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
		tb.Fatalf("seed evidence: %v", err)
	}
	return ev
}

func SeedChallenge(tb testing.TB, ctx context.Context, tx *gorm.DB, targetID uuid.UUID, status, outcome string) *types.Challenge {
	tb.Helper()
	ch := &types.Challenge{
		ID:         uuid.New(),
		TargetType: types.TargetNode,
		TargetID:   targetID,
		Status:     status,
		Outcome:    outcome,
	}
	if err := tx.WithContext(ctx).Create(ch).Error; err != nil {
		tb.Fatalf("seed challenge: %v", err)
	}
	return ch
}

func SeedVote(tb testing.TB, ctx context.Context, tx *gorm.DB, targetID uuid.UUID, inFavor bool) *types.ConsensusVote {
	tb.Helper()
	v := &types.ConsensusVote{
		ID:         uuid.New(),
		TargetType: types.TargetNode,
		TargetID:   targetID,
		VoterID:    uuid.New(),
		InFavor:    inFavor,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vote: %v", err)
	}
	return v
}
