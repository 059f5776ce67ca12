// Package store defines the narrow boundary between the veracity engine
// and persistent graph state. All traversal and scoring components consume
// this interface; nothing else reaches the database.
package store

import (
	"context"

	"github.com/google/uuid"

	types "github.com/openverity/verigraph-backend/internal/domain"
)

type GraphStore interface {
	GetNode(ctx context.Context, id uuid.UUID) (*types.Node, error)
	GetEdge(ctx context.Context, id uuid.UUID) (*types.Edge, error)
	OutgoingEdges(ctx context.Context, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error)
	IncomingEdges(ctx context.Context, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error)

	EvidenceFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.Evidence, error)
	ChallengesFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.Challenge, error)
	VotesFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.ConsensusVote, error)

	GetSource(ctx context.Context, id uuid.UUID) (*types.Source, error)
	EvidenceBySource(ctx context.Context, sourceID uuid.UUID) ([]*types.Evidence, error)
	UpdateSourceCredibility(ctx context.Context, sourceID uuid.UUID, score float64) error

	GetScoreRecord(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) (*types.VeracityScoreRecord, error)
	UpsertScoreRecord(ctx context.Context, rec *types.VeracityScoreRecord) error
	AppendHistory(ctx context.Context, entry *types.VeracityHistoryEntry) error
	UpdateTargetWeight(ctx context.Context, targetType types.TargetType, targetID uuid.UUID, weight float64) error

	// WithTransaction runs fn against a store bound to one transaction.
	// fn returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(tx GraphStore) error) error
}
