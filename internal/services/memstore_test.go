package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/openverity/verigraph-backend/internal/data/store"
	types "github.com/openverity/verigraph-backend/internal/domain"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
)

// memStore is an in-memory GraphStore used by the service tests. Writes
// apply immediately; WithTransaction runs the callback against the same
// state, which is enough to exercise the services' read/write paths.
type memStore struct {
	mu sync.Mutex

	nodes   map[uuid.UUID]*types.Node
	edges   map[uuid.UUID]*types.Edge
	sources map[uuid.UUID]*types.Source

	evidence   []*types.Evidence
	challenges []*types.Challenge
	votes      []*types.ConsensusVote

	scores  map[string]*types.VeracityScoreRecord
	history []*types.VeracityHistoryEntry
}

func newMemStore() *memStore {
	return &memStore{
		nodes:   map[uuid.UUID]*types.Node{},
		edges:   map[uuid.UUID]*types.Edge{},
		sources: map[uuid.UUID]*types.Source{},
		scores:  map[string]*types.VeracityScoreRecord{},
	}
}

func scoreKey(targetType types.TargetType, targetID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", targetType, targetID)
}

func (m *memStore) addNode(n *types.Node) *types.Node {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	m.nodes[n.ID] = n
	return n
}

func (m *memStore) addEdge(e *types.Edge) *types.Edge {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.edges[e.ID] = e
	return e
}

func (m *memStore) addSource(s *types.Source) *types.Source {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.sources[s.ID] = s
	return s
}

func (m *memStore) GetNode(ctx context.Context, id uuid.UUID) (*types.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, pkgerrors.ErrNotFound)
	}
	return n, nil
}

func (m *memStore) GetEdge(ctx context.Context, id uuid.UUID) (*types.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.edges[id]
	if !ok {
		return nil, fmt.Errorf("edge %s: %w", id, pkgerrors.ErrNotFound)
	}
	return e, nil
}

func matchesFilter(e *types.Edge, filter types.EdgeFilter) bool {
	if filter.EdgeTypeID != "" && e.EdgeTypeID != filter.EdgeTypeID {
		return false
	}
	return e.Weight >= filter.MinWeight
}

func (m *memStore) OutgoingEdges(ctx context.Context, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Edge
	for _, e := range m.edges {
		if e.SourceNodeID == nodeID && matchesFilter(e, filter) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memStore) IncomingEdges(ctx context.Context, nodeID uuid.UUID, filter types.EdgeFilter) ([]*types.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Edge
	for _, e := range m.edges {
		if e.TargetNodeID == nodeID && matchesFilter(e, filter) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memStore) EvidenceFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Evidence
	for _, ev := range m.evidence {
		if ev.TargetType == targetType && ev.TargetID == targetID && ev.InvalidatedAt == nil {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) ChallengesFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Challenge
	for _, ch := range m.challenges {
		if ch.TargetType == targetType && ch.TargetID == targetID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (m *memStore) VotesFor(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) ([]*types.ConsensusVote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.ConsensusVote
	for _, v := range m.votes {
		if v.TargetType == targetType && v.TargetID == targetID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) GetSource(ctx context.Context, id uuid.UUID) (*types.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return nil, fmt.Errorf("source %s: %w", id, pkgerrors.ErrNotFound)
	}
	return s, nil
}

func (m *memStore) EvidenceBySource(ctx context.Context, sourceID uuid.UUID) ([]*types.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Evidence
	for _, ev := range m.evidence {
		if ev.SourceID == sourceID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) UpdateSourceCredibility(ctx context.Context, sourceID uuid.UUID, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[sourceID]
	if !ok {
		return fmt.Errorf("source %s: %w", sourceID, pkgerrors.ErrNotFound)
	}
	s.CredibilityScore = score
	return nil
}

func (m *memStore) GetScoreRecord(ctx context.Context, targetType types.TargetType, targetID uuid.UUID) (*types.VeracityScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[scoreKey(targetType, targetID)], nil
}

func (m *memStore) UpsertScoreRecord(ctx context.Context, rec *types.VeracityScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[scoreKey(rec.TargetType, rec.TargetID)] = rec
	return nil
}

func (m *memStore) AppendHistory(ctx context.Context, entry *types.VeracityHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, entry)
	return nil
}

func (m *memStore) UpdateTargetWeight(ctx context.Context, targetType types.TargetType, targetID uuid.UUID, weight float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch targetType {
	case types.TargetNode:
		n, ok := m.nodes[targetID]
		if !ok {
			return fmt.Errorf("node %s: %w", targetID, pkgerrors.ErrNotFound)
		}
		n.Weight = weight
	default:
		e, ok := m.edges[targetID]
		if !ok {
			return fmt.Errorf("edge %s: %w", targetID, pkgerrors.ErrNotFound)
		}
		e.Weight = weight
	}
	return nil
}

func (m *memStore) WithTransaction(ctx context.Context, fn func(tx store.GraphStore) error) error {
	return fn(m)
}
