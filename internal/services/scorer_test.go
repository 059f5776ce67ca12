package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openverity/verigraph-backend/internal/data/store"
	types "github.com/openverity/verigraph-backend/internal/domain"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []ScoreChange
}

func (r *recordingNotifier) PublishScoreChange(ctx context.Context, change ScoreChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestScorer(st *memStore, notifier ScoreChangeNotifier, t *testing.T) VeracityScorer {
	opts := ScorerOptions{Now: fixedNow}
	if notifier != nil {
		opts.Notifier = notifier
	}
	return NewVeracityScorer(st, DefaultCalibration(), testLogger(t), opts)
}

func TestRecomputeValidation(t *testing.T) {
	st := newMemStore()
	scorer := newTestScorer(st, nil, t)
	ctx := context.Background()

	if _, err := scorer.Recompute(ctx, "claim", uuid.New(), "r"); !errors.Is(err, pkgerrors.ErrInvalidParameter) {
		t.Fatalf("bad target type: got %v", err)
	}
	if _, err := scorer.Recompute(ctx, types.TargetNode, uuid.Nil, "r"); !errors.Is(err, pkgerrors.ErrInvalidParameter) {
		t.Fatalf("nil target id: got %v", err)
	}
	if _, err := scorer.Recompute(ctx, types.TargetNode, uuid.New(), "r"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing node: got %v", err)
	}
}

func TestRecomputeImmutableTargetIsPinned(t *testing.T) {
	st := newMemStore()
	n := st.addNode(&types.Node{ID: uuid.New(), Label: "axiom", Weight: 1.0, IsImmutable: true})
	scorer := newTestScorer(st, nil, t)

	rec, err := scorer.Recompute(context.Background(), types.TargetNode, n.ID, "r")
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if rec.Score != 1.0 {
		t.Fatalf("immutable score = %v, want 1.0", rec.Score)
	}
	if len(st.scores) != 0 || len(st.history) != 0 {
		t.Fatalf("immutable recompute must not persist anything")
	}
	if n.Weight != 1.0 {
		t.Fatalf("immutable weight changed to %v", n.Weight)
	}
}

func TestRecomputeSupportingEvidenceAndVotes(t *testing.T) {
	st := newMemStore()
	n := st.addNode(node(0.5))
	src := st.addSource(&types.Source{ID: uuid.New(), Name: "s", CredibilityScore: 1.0})

	st.evidence = append(st.evidence,
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Polarity: types.PolaritySupport, RawWeight: 1.0, Confidence: 0.9, SourceID: src.ID, CreatedAt: fixedNow()},
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Polarity: types.PolaritySupport, RawWeight: 1.0, Confidence: 0.8, SourceID: src.ID, CreatedAt: fixedNow()},
	)
	for i := 0; i < 3; i++ {
		st.votes = append(st.votes, &types.ConsensusVote{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, VoterID: uuid.New(), InFavor: true})
	}
	st.votes = append(st.votes, &types.ConsensusVote{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, VoterID: uuid.New(), InFavor: false})

	notifier := &recordingNotifier{}
	scorer := newTestScorer(st, notifier, t)

	rec, err := scorer.Recompute(context.Background(), types.TargetNode, n.ID, "evidence_added")
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	// All-supporting fresh evidence saturates the evidence term at 1.0;
	// blended with 3/4 consensus: 1.0*0.6 + 0.75*0.4 = 0.9.
	if !almostEqual(rec.Score, 0.9) {
		t.Fatalf("score = %v, want 0.9", rec.Score)
	}
	if rec.EvidenceCount != 2 || !almostEqual(rec.ConsensusScore, 0.75) {
		t.Fatalf("record = %+v", rec)
	}
	if !almostEqual(rec.TemporalDecayFactor, 1.0) {
		t.Fatalf("decay = %v, want 1.0 for fresh evidence", rec.TemporalDecayFactor)
	}

	if !almostEqual(n.Weight, 0.9) {
		t.Fatalf("node weight = %v, want synced to 0.9", n.Weight)
	}
	if len(st.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(st.history))
	}
	h := st.history[0]
	if h.Reason != "evidence_added" || !almostEqual(h.OldScore, 0.5) || !almostEqual(h.Delta, 0.4) {
		t.Fatalf("history = %+v", h)
	}
	if len(notifier.changes) != 1 || !almostEqual(notifier.changes[0].NewScore, 0.9) {
		t.Fatalf("notifier changes = %+v", notifier.changes)
	}
}

func TestRecomputeRefutingEvidenceDragsScoreDown(t *testing.T) {
	st := newMemStore()
	n := st.addNode(node(0.5))
	src := st.addSource(&types.Source{ID: uuid.New(), Name: "s", CredibilityScore: 1.0})

	st.evidence = append(st.evidence,
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Polarity: types.PolarityRefute, RawWeight: 1.0, Confidence: 0.9, SourceID: src.ID, CreatedAt: fixedNow()},
	)

	scorer := newTestScorer(st, nil, t)
	rec, err := scorer.Recompute(context.Background(), types.TargetNode, n.ID, "r")
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	// Evidence term clamps to 0; neutral consensus contributes 0.2.
	if !almostEqual(rec.Score, 0.2) {
		t.Fatalf("score = %v, want 0.2", rec.Score)
	}
}

func TestRecomputeChallengePenalties(t *testing.T) {
	st := newMemStore()
	n := st.addNode(node(0.5))
	st.challenges = append(st.challenges,
		&types.Challenge{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Status: types.ChallengeOpen},
		&types.Challenge{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Status: types.ChallengeResolved, Outcome: types.OutcomeUpheld},
		&types.Challenge{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Status: types.ChallengeResolved, Outcome: types.OutcomeDismissed},
	)

	scorer := newTestScorer(st, nil, t)
	rec, err := scorer.Recompute(context.Background(), types.TargetNode, n.ID, "r")
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	// Neutral 0.5 baseline minus 0.15 (open) and 0.05 (upheld); the
	// dismissed challenge costs nothing.
	if !almostEqual(rec.Score, 0.3) {
		t.Fatalf("score = %v, want 0.3", rec.Score)
	}
	if rec.ChallengeCount != 3 || rec.OpenChallengeCount != 1 {
		t.Fatalf("challenge counts = %d/%d, want 3/1", rec.ChallengeCount, rec.OpenChallengeCount)
	}
}

func TestRecomputeTemporalDecay(t *testing.T) {
	st := newMemStore()
	n := st.addNode(node(0.5))
	src := st.addSource(&types.Source{ID: uuid.New(), Name: "s", CredibilityScore: 1.0})

	st.evidence = append(st.evidence,
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Polarity: types.PolaritySupport, RawWeight: 1.0, Confidence: 1.0, SourceID: src.ID, CreatedAt: fixedNow().AddDate(0, 0, -180)},
	)

	scorer := newTestScorer(st, nil, t)
	rec, err := scorer.Recompute(context.Background(), types.TargetNode, n.ID, "r")
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	// One half-life elapsed: decay = 0.5 + 0.5*0.5 = 0.75.
	if !almostEqual(rec.TemporalDecayFactor, 0.75) {
		t.Fatalf("decay = %v, want 0.75", rec.TemporalDecayFactor)
	}
	// Blended 0.8 scaled by the decay.
	if !almostEqual(rec.Score, 0.6) {
		t.Fatalf("score = %v, want 0.6", rec.Score)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	st := newMemStore()
	n := st.addNode(node(0.5))
	scorer := newTestScorer(st, nil, t)
	ctx := context.Background()

	first, err := scorer.Recompute(ctx, types.TargetNode, n.ID, "first")
	if err != nil {
		t.Fatalf("first Recompute: %v", err)
	}
	second, err := scorer.Recompute(ctx, types.TargetNode, n.ID, "second")
	if err != nil {
		t.Fatalf("second Recompute: %v", err)
	}
	if !almostEqual(first.Score, second.Score) {
		t.Fatalf("scores diverged: %v vs %v", first.Score, second.Score)
	}
	if len(st.history) != 2 {
		t.Fatalf("history entries = %d, want 2", len(st.history))
	}
	if !almostEqual(st.history[1].Delta, 0) {
		t.Fatalf("unchanged recompute delta = %v, want 0", st.history[1].Delta)
	}
}

func TestRecomputeUpdatesSourceCredibility(t *testing.T) {
	st := newMemStore()
	n := st.addNode(node(0.5))
	src := st.addSource(&types.Source{ID: uuid.New(), Name: "s", CredibilityScore: 1.0})

	other := uuid.New()
	st.evidence = append(st.evidence,
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: n.ID, Polarity: types.PolaritySupport, RawWeight: 1.0, Confidence: 0.9, SourceID: src.ID, DisputeStatus: types.DisputeNone, CreatedAt: fixedNow()},
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: other, Polarity: types.PolaritySupport, RawWeight: 1.0, Confidence: 0.9, SourceID: src.ID, DisputeStatus: types.DisputeSurvived, CreatedAt: fixedNow()},
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: other, Polarity: types.PolaritySupport, RawWeight: 1.0, Confidence: 0.9, SourceID: src.ID, DisputeStatus: types.DisputeSurvived, CreatedAt: fixedNow()},
		&types.Evidence{ID: uuid.New(), TargetType: types.TargetNode, TargetID: other, Polarity: types.PolaritySupport, RawWeight: 1.0, Confidence: 0.9, SourceID: src.ID, DisputeStatus: types.DisputeDisputed, CreatedAt: fixedNow()},
	)

	scorer := newTestScorer(st, nil, t)
	if _, err := scorer.Recompute(context.Background(), types.TargetNode, n.ID, "r"); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if !almostEqual(src.CredibilityScore, 2.0/3.0) {
		t.Fatalf("credibility = %v, want 2/3", src.CredibilityScore)
	}
}

func TestRecomputeEdgeTarget(t *testing.T) {
	st := newMemStore()
	a := st.addNode(node(0.9))
	b := st.addNode(node(0.9))
	e := st.addEdge(edge(a.ID, b.ID, "supports", 0.5))

	st.votes = append(st.votes,
		&types.ConsensusVote{ID: uuid.New(), TargetType: types.TargetEdge, TargetID: e.ID, VoterID: uuid.New(), InFavor: true},
		&types.ConsensusVote{ID: uuid.New(), TargetType: types.TargetEdge, TargetID: e.ID, VoterID: uuid.New(), InFavor: true},
	)

	scorer := newTestScorer(st, nil, t)
	rec, err := scorer.Recompute(context.Background(), types.TargetEdge, e.ID, "r")
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	// Neutral evidence 0.5*0.6 plus unanimous consensus 1.0*0.4.
	if !almostEqual(rec.Score, 0.7) {
		t.Fatalf("score = %v, want 0.7", rec.Score)
	}
	if !almostEqual(e.Weight, 0.7) {
		t.Fatalf("edge weight = %v, want synced to 0.7", e.Weight)
	}
}

// txWeightStore rewrites a node weight at transaction start, mimicking a
// concurrent writer that lands between lookup and lock acquisition.
type txWeightStore struct {
	*memStore
	nodeID uuid.UUID
	weight float64
}

func (s *txWeightStore) WithTransaction(ctx context.Context, fn func(tx store.GraphStore) error) error {
	s.mu.Lock()
	s.nodes[s.nodeID].Weight = s.weight
	s.mu.Unlock()
	return fn(s)
}

func TestRecomputeFirstHistoryEntryUsesTransactionalWeight(t *testing.T) {
	st := newMemStore()
	n := st.addNode(node(0.5))
	tw := &txWeightStore{memStore: st, nodeID: n.ID, weight: 0.25}
	scorer := NewVeracityScorer(tw, DefaultCalibration(), testLogger(t), ScorerOptions{Now: fixedNow})

	if _, err := scorer.Recompute(context.Background(), types.TargetNode, n.ID, "r"); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if len(st.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(st.history))
	}
	if got := st.history[0].OldScore; !almostEqual(got, 0.25) {
		t.Fatalf("old score = %v, want the weight visible inside the transaction", got)
	}
}
