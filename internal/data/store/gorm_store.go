package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openverity/verigraph-backend/internal/data/repos"
	types "github.com/openverity/verigraph-backend/internal/domain"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

// gormStore implements GraphStore on Postgres via the repo layer. When tx
// is non-nil every call runs inside that transaction.
type gormStore struct {
	db    *gorm.DB
	tx    *gorm.DB
	repos repos.All
	log   *logger.Logger
}

func NewGormStore(db *gorm.DB, log *logger.Logger) GraphStore {
	return &gormStore{
		db:    db,
		repos: repos.NewAll(db, log),
		log:   log.With("service", "GraphStore"),
	}
}

func (s *gormStore) handle() *gorm.DB {
	if s.tx != nil {
		return s.tx
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, pkgerrors.ErrStoreUnavailable, err)
}

func (s *gormStore) GetNode(ctx context.Context, id uuid.UUID) (*types.Node, error) {
	n, err := s.repos.Nodes.GetByID(ctx, s.handle(), id)
	if err != nil {
		return nil, storeErr("get node", err)
	}
	if n == nil {
		return nil, fmt.Errorf("node %s: %w", id, pkgerrors.ErrNotFound)
	}
	return n, nil
}

func (s *gormStore) GetEdge(ctx context.Context, id uuid.UUID) (*types.Edge, error) {
	e, err := s.repos.Edges.GetByID(ctx, s.handle(), id)
	if err != nil {
		return nil, storeErr("get edge", err)
	}
	if e == nil {
		return nil, fmt.Errorf("edge %s: %w", id, pkgerrors.ErrNotFound)
	}
	return e, nil
}

func (s *gormStore) OutgoingEdges(ctx context.Context, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error) {
	out, err := s.repos.Edges.ListOutgoing(ctx, s.handle(), nodeID, filter)
	if err != nil {
		return nil, storeErr("outgoing edges", err)
	}
	return out, nil
}

func (s *gormStore) IncomingEdges(ctx context.Context, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error) {
	out, err := s.repos.Edges.ListIncoming(ctx, s.handle(), nodeID, filter)
	if err != nil {
		return nil, storeErr("incoming edges", err)
	}
	return out, nil
}

func (s *gormStore) EvidenceFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.Evidence, error) {
	out, err := s.repos.Evidence.ListByTarget(ctx, s.handle(), targetType, targetID)
	if err != nil {
		return nil, storeErr("evidence for target", err)
	}
	return out, nil
}

func (s *gormStore) ChallengesFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.Challenge, error) {
	out, err := s.repos.Challenges.ListByTarget(ctx, s.handle(), targetType, targetID)
	if err != nil {
		return nil, storeErr("challenges for target", err)
	}
	return out, nil
}

func (s *gormStore) VotesFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.ConsensusVote, error) {
	out, err := s.repos.Votes.ListByTarget(ctx, s.handle(), targetType, targetID)
	if err != nil {
		return nil, storeErr("votes for target", err)
	}
	return out, nil
}

func (s *gormStore) GetSource(ctx context.Context, id uuid.UUID) (*types.Source, error) {
	src, err := s.repos.Sources.GetByID(ctx, s.handle(), id)
	if err != nil {
		return nil, storeErr("get source", err)
	}
	if src == nil {
		return nil, fmt.Errorf("source %s: %w", id, pkgerrors.ErrNotFound)
	}
	return src, nil
}

func (s *gormStore) EvidenceBySource(ctx context.Context, sourceID uuid.UUID) ([]*types.Evidence, error) {
	out, err := s.repos.Evidence.ListBySource(ctx, s.handle(), sourceID)
	if err != nil {
		return nil, storeErr("evidence by source", err)
	}
	return out, nil
}

func (s *gormStore) UpdateSourceCredibility(ctx context.Context, sourceID uuid.UUID, score float64) error {
	if err := s.repos.Sources.UpdateCredibility(ctx, s.handle(), sourceID, score); err != nil {
		return storeErr("update source credibility", err)
	}
	return nil
}

func (s *gormStore) GetScoreRecord(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) (*types.VeracityScoreRecord, error) {
	rec, err := s.repos.ScoreRecords.GetByTarget(ctx, s.handle(), targetType, targetID)
	if err != nil {
		return nil, storeErr("get score record", err)
	}
	return rec, nil
}

func (s *gormStore) UpsertScoreRecord(ctx context.Context, rec *types.VeracityScoreRecord) error {
	if err := s.repos.ScoreRecords.Upsert(ctx, s.handle(), rec); err != nil {
		return storeErr("upsert score record", err)
	}
	return nil
}

func (s *gormStore) AppendHistory(ctx context.Context, entry *types.VeracityHistoryEntry) error {
	if err := s.repos.History.Append(ctx, s.handle(), entry); err != nil {
		return storeErr("append history", err)
	}
	return nil
}

func (s *gormStore) UpdateTargetWeight(ctx context.Context, targetType types.TargetType, targetID uuid.UUID, weight float64) error {
	var err error
	switch targetType {
	case types.TargetNode:
		err = s.repos.Nodes.UpdateWeight(ctx, s.handle(), targetID, weight)
	case types.TargetEdge:
		err = s.repos.Edges.UpdateWeight(ctx, s.handle(), targetID, weight)
	default:
		return fmt.Errorf("target type %q: %w", targetType, pkgerrors.ErrInvalidParameter)
	}
	if err != nil {
		return storeErr("update target weight", err)
	}
	return nil
}

func (s *gormStore) WithTransaction(ctx context.Context, fn func(tx GraphStore) error) error {
	if s.tx != nil {
		// Already inside a transaction; reuse it rather than nesting.
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		bound := &gormStore{db: s.db, tx: txx, repos: s.repos, log: s.log}
		return fn(bound)
	})
}
