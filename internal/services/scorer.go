package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openverity/verigraph-backend/internal/data/store"
	types "github.com/openverity/verigraph-backend/internal/domain"
	pkgerrors "github.com/openverity/verigraph-backend/internal/pkg/errors"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

// VeracityScorer recomputes and persists the veracity score of one target.
// It is the only writer in the engine; every Recompute runs inside a single
// store transaction and is serialized per target.
type VeracityScorer interface {
	Recompute(ctx context.Context, targetType types.TargetType, targetID uuid.UUID, reason string) (*types.VeracityScoreRecord, error)
}

// RecomputeLocker serializes recomputes for one target across processes.
// Acquire blocks until the lock is held and returns the release func.
type RecomputeLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// ScoreChange describes one committed recomputation.
type ScoreChange struct {
	TargetType   types.TargetType `json:"target_type"`
	TargetID     uuid.UUID        `json:"target_id"`
	OldScore     float64          `json:"old_score"`
	NewScore     float64          `json:"new_score"`
	Delta        float64          `json:"delta"`
	Reason       string           `json:"reason"`
	CalculatedAt time.Time        `json:"calculated_at"`
}

// ScoreChangeNotifier fans a committed change out to downstream consumers.
// Failures are logged, never propagated; the score is already committed.
type ScoreChangeNotifier interface {
	PublishScoreChange(ctx context.Context, change ScoreChange) error
}

// ScoreMirror pushes a committed weight into a secondary read model.
type ScoreMirror interface {
	MirrorTargetScore(ctx context.Context, targetType types.TargetType, targetID uuid.UUID, weight float64) error
}

type ScorerOptions struct {
	Locker   RecomputeLocker     // optional distributed lock
	Notifier ScoreChangeNotifier // optional
	Mirror   ScoreMirror         // optional
	Now      func() time.Time    // test clock
}

type veracityScorer struct {
	store    store.GraphStore
	cal      Calibration
	log      *logger.Logger
	local    *keyedLock
	locker   RecomputeLocker
	notifier ScoreChangeNotifier
	mirror   ScoreMirror
	now      func() time.Time
}

func NewVeracityScorer(st store.GraphStore, cal Calibration, log *logger.Logger, opts ScorerOptions) VeracityScorer {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &veracityScorer{
		store:    st,
		cal:      cal,
		log:      log.With("service", "VeracityScorer"),
		local:    newKeyedLock(),
		locker:   opts.Locker,
		notifier: opts.Notifier,
		mirror:   opts.Mirror,
		now:      now,
	}
}

func (s *veracityScorer) Recompute(ctx context.Context, targetType types.TargetType, targetID uuid.UUID, reason string) (*types.VeracityScoreRecord, error) {
	if !targetType.Valid() {
		return nil, fmt.Errorf("target type %q: %w", targetType, pkgerrors.ErrInvalidParameter)
	}
	if targetID == uuid.Nil {
		return nil, fmt.Errorf("target id: %w", pkgerrors.ErrInvalidParameter)
	}

	ctx, span := otel.Tracer("verigraph/scorer").Start(ctx, "Recompute")
	defer span.End()
	span.SetAttributes(
		attribute.String("target.type", string(targetType)),
		attribute.String("target.id", targetID.String()),
	)

	_, immutable, err := s.targetState(ctx, s.store, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if immutable {
		// Ground-truth targets are pinned at 1.0 and never recomputed.
		return &types.VeracityScoreRecord{
			TargetType:          targetType,
			TargetID:            targetID,
			Score:               1.0,
			ConsensusScore:      s.cal.NeutralPrior,
			TemporalDecayFactor: 1.0,
			CalculatedAt:        s.now(),
		}, nil
	}

	key := string(targetType) + ":" + targetID.String()
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("acquire recompute lock: %w", err)
		}
		defer release()
	}
	unlock := s.local.Lock(key)
	defer unlock()

	var (
		rec    *types.VeracityScoreRecord
		change ScoreChange
	)
	txErr := s.store.WithTransaction(ctx, func(tx store.GraphStore) error {
		var oldScore float64
		if prev, err := tx.GetScoreRecord(ctx, targetType, targetID); err != nil {
			return err
		} else if prev != nil {
			oldScore = prev.Score
		} else {
			// First recompute: the stored weight is the prior, read under
			// the same transaction so history never records a stale value.
			w, _, err := s.targetState(ctx, tx, targetType, targetID)
			if err != nil {
				return err
			}
			oldScore = w
		}

		evidence, err := tx.EvidenceFor(ctx, targetType, targetID)
		if err != nil {
			return err
		}
		evidenceScore, touchedSources, err := s.evidenceScore(ctx, tx, evidence)
		if err != nil {
			return err
		}

		votes, err := tx.VotesFor(ctx, targetType, targetID)
		if err != nil {
			return err
		}
		consensus := s.consensusScore(votes)

		challenges, err := tx.ChallengesFor(ctx, targetType, targetID)
		if err != nil {
			return err
		}
		penalty, openCount := s.challengePenalty(challenges)

		decay := s.temporalDecay(evidence)

		blended := clamp01(evidenceScore*s.cal.EvidenceBlendWeight + consensus*s.cal.ConsensusBlendWeight)
		final := clamp01(blended*decay - penalty)

		rec = &types.VeracityScoreRecord{
			TargetType:          targetType,
			TargetID:            targetID,
			Score:               final,
			EvidenceCount:       len(evidence),
			ConsensusScore:      consensus,
			ChallengeCount:      len(challenges),
			OpenChallengeCount:  openCount,
			TemporalDecayFactor: decay,
			CalculatedAt:        s.now(),
		}
		if err := tx.UpsertScoreRecord(ctx, rec); err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, &types.VeracityHistoryEntry{
			TargetType:   targetType,
			TargetID:     targetID,
			OldScore:     oldScore,
			NewScore:     final,
			Delta:        final - oldScore,
			Reason:       reason,
			CalculatedAt: rec.CalculatedAt,
		}); err != nil {
			return err
		}
		if err := tx.UpdateTargetWeight(ctx, targetType, targetID, final); err != nil {
			return err
		}

		for srcID := range touchedSources {
			if err := s.recomputeSourceCredibility(ctx, tx, srcID); err != nil {
				return err
			}
		}

		change = ScoreChange{
			TargetType:   targetType,
			TargetID:     targetID,
			OldScore:     oldScore,
			NewScore:     final,
			Delta:        final - oldScore,
			Reason:       reason,
			CalculatedAt: rec.CalculatedAt,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Post-commit side effects are best effort; the committed score is
	// already the source of truth.
	if s.notifier != nil {
		if err := s.notifier.PublishScoreChange(ctx, change); err != nil {
			s.log.Warn("score change publish failed", "target_id", targetID, "error", err)
		}
	}
	if s.mirror != nil {
		if err := s.mirror.MirrorTargetScore(ctx, targetType, targetID, rec.Score); err != nil {
			s.log.Warn("score mirror failed", "target_id", targetID, "error", err)
		}
	}

	return rec, nil
}

func (s *veracityScorer) targetState(ctx context.Context, st store.GraphStore, targetType types.TargetType, targetID uuid.UUID) (weight float64, immutable bool, err error) {
	switch targetType {
	case types.TargetNode:
		n, err := st.GetNode(ctx, targetID)
		if err != nil {
			return 0, false, err
		}
		return n.Weight, n.IsImmutable, nil
	default:
		e, err := st.GetEdge(ctx, targetID)
		if err != nil {
			return 0, false, err
		}
		return e.Weight, e.IsImmutable, nil
	}
}

// evidenceScore weighs each piece by rawWeight * confidence * source
// credibility and maps the supporting/refuting balance onto [0,1]. No
// evidence yields the neutral prior.
func (s *veracityScorer) evidenceScore(ctx context.Context, tx store.GraphStore, evidence []*types.Evidence) (float64, map[uuid.UUID]struct{}, error) {
	touched := map[uuid.UUID]struct{}{}
	if len(evidence) == 0 {
		return s.cal.NeutralPrior, touched, nil
	}

	credibility := map[uuid.UUID]float64{}
	var supporting, refuting float64
	for _, ev := range evidence {
		cred, ok := credibility[ev.SourceID]
		if !ok {
			src, err := tx.GetSource(ctx, ev.SourceID)
			if err != nil {
				return 0, nil, err
			}
			cred = src.CredibilityScore
			credibility[ev.SourceID] = cred
			touched[ev.SourceID] = struct{}{}
		}
		w := ev.RawWeight * ev.Confidence * cred
		if ev.Polarity == types.PolarityRefute {
			refuting += w
		} else {
			supporting += w
		}
	}

	score := s.cal.NeutralPrior + (supporting-refuting)/(supporting+refuting+s.cal.Epsilon)
	return clamp01(score), touched, nil
}

func (s *veracityScorer) consensusScore(votes []*types.ConsensusVote) float64 {
	if len(votes) == 0 {
		return s.cal.NeutralPrior
	}
	inFavor := 0
	for _, v := range votes {
		if v.InFavor {
			inFavor++
		}
	}
	return float64(inFavor) / float64(len(votes))
}

// challengePenalty sums the open (full) and resolved-against (reduced,
// permanent) penalties, capped before the final clamp.
func (s *veracityScorer) challengePenalty(challenges []*types.Challenge) (penalty float64, openCount int) {
	for _, c := range challenges {
		switch {
		case c.IsOpen():
			penalty += s.cal.OpenChallengePenalty
			openCount++
		case c.ResolvedAgainstTarget():
			penalty += s.cal.ResolvedAgainstPenalty
		}
	}
	if penalty > s.cal.MaxChallengePenalty {
		penalty = s.cal.MaxChallengePenalty
	}
	return penalty, openCount
}

// temporalDecay discounts older uncorroborated evidence: a half-life curve
// over the mean evidence age, never dropping under the configured floor.
// No evidence means no decay.
func (s *veracityScorer) temporalDecay(evidence []*types.Evidence) float64 {
	if len(evidence) == 0 {
		return 1.0
	}
	now := s.now()
	var totalDays float64
	for _, ev := range evidence {
		age := now.Sub(ev.CreatedAt)
		if age < 0 {
			age = 0
		}
		totalDays += age.Hours() / 24
	}
	meanDays := totalDays / float64(len(evidence))
	floor := s.cal.TemporalDecayFloor
	return floor + (1-floor)*math.Exp2(-meanDays/s.cal.TemporalDecayHalfLifeDays)
}

// recomputeSourceCredibility derives the source's track record from its
// challenged evidence: survived / (survived + disputed), 1.0 if never
// challenged.
func (s *veracityScorer) recomputeSourceCredibility(ctx context.Context, tx store.GraphStore, sourceID uuid.UUID) error {
	rows, err := tx.EvidenceBySource(ctx, sourceID)
	if err != nil {
		return err
	}
	survived, disputed := 0, 0
	for _, ev := range rows {
		switch ev.DisputeStatus {
		case types.DisputeSurvived:
			survived++
		case types.DisputeDisputed:
			disputed++
		}
	}
	cred := 1.0
	if survived+disputed > 0 {
		cred = float64(survived) / float64(survived+disputed)
	}
	return tx.UpdateSourceCredibility(ctx, sourceID, cred)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
