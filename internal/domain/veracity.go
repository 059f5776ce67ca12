package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TargetType string

const (
	TargetNode TargetType = "node"
	TargetEdge TargetType = "edge"
)

func (t TargetType) Valid() bool {
	return t == TargetNode || t == TargetEdge
}

const (
	PolaritySupport = "support"
	PolarityRefute  = "refute"
)

const (
	DisputeNone     = "none"
	DisputeSurvived = "survived"
	DisputeDisputed = "disputed"
)

// Evidence is a user-submitted, source-attributed assertion supporting or
// refuting one target. Rows are never deleted, only soft-invalidated; the
// scorer consumes them read-only.
type Evidence struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	TargetType TargetType `gorm:"column:target_type;not null;index:idx_evidence_target" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_evidence_target" json:"target_id"`

	Polarity   string  `gorm:"column:polarity;not null" json:"polarity"`
	RawWeight  float64 `gorm:"column:raw_weight;not null" json:"raw_weight"`
	Confidence float64 `gorm:"column:confidence;not null" json:"confidence"`

	SourceID uuid.UUID `gorm:"type:uuid;not null;index:idx_evidence_source" json:"source_id"`

	// DisputeStatus is written by the challenge-resolution flow and read by
	// the source credibility recomputation.
	DisputeStatus string `gorm:"column:dispute_status;not null;default:'none'" json:"dispute_status"`

	InvalidatedAt *time.Time `gorm:"column:invalidated_at" json:"invalidated_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Evidence) TableName() string { return "evidence" }

// Source is an evidence provenance with a derived credibility score based
// on its historical survival rate under challenge. Only the credibility
// recomputation mutates CredibilityScore.
type Source struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Name             string  `gorm:"column:name;not null" json:"name"`
	CredibilityScore float64 `gorm:"column:credibility_score;not null;default:1.0" json:"credibility_score"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Source) TableName() string { return "source" }

const (
	ChallengeOpen        = "open"
	ChallengeUnderReview = "under_review"
	ChallengeResolved    = "resolved"
)

const (
	// OutcomeUpheld: the challenge stood, resolved against the target.
	OutcomeUpheld = "upheld"
	// OutcomeDismissed: resolved in the target's favor.
	OutcomeDismissed = "dismissed"
)

// Challenge is an open or resolved dispute against a target. Open and
// under-review challenges penalize the score in full; upheld ones keep a
// smaller permanent penalty; dismissed ones none.
type Challenge struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	TargetType TargetType `gorm:"column:target_type;not null;index:idx_challenge_target" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_challenge_target" json:"target_id"`

	Status  string `gorm:"column:status;not null;default:'open'" json:"status"`
	Outcome string `gorm:"column:outcome" json:"outcome,omitempty"`

	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
}

func (Challenge) TableName() string { return "challenge" }

func (c *Challenge) IsOpen() bool {
	return c.Status == ChallengeOpen || c.Status == ChallengeUnderReview
}

func (c *Challenge) ResolvedAgainstTarget() bool {
	return c.Status == ChallengeResolved && c.Outcome == OutcomeUpheld
}

// ConsensusVote is a community agreement annotation on one target,
// consumed read-only by the scorer's consensus term.
type ConsensusVote struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	TargetType TargetType `gorm:"column:target_type;not null;index:idx_vote_target" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_vote_target" json:"target_id"`

	VoterID uuid.UUID `gorm:"type:uuid;not null" json:"voter_id"`
	InFavor bool      `gorm:"column:in_favor;not null" json:"in_favor"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ConsensusVote) TableName() string { return "consensus_vote" }

// VeracityScoreRecord is the computed, cached score for one target. One row
// per (target_type, target_id), upserted on every recomputation.
type VeracityScoreRecord struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	TargetType TargetType `gorm:"column:target_type;not null;uniqueIndex:idx_score_target" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_score_target" json:"target_id"`

	Score               float64 `gorm:"column:score;not null" json:"score"`
	EvidenceCount       int     `gorm:"column:evidence_count;not null;default:0" json:"evidence_count"`
	ConsensusScore      float64 `gorm:"column:consensus_score;not null;default:0.5" json:"consensus_score"`
	ChallengeCount      int     `gorm:"column:challenge_count;not null;default:0" json:"challenge_count"`
	OpenChallengeCount  int     `gorm:"column:open_challenge_count;not null;default:0" json:"open_challenge_count"`
	TemporalDecayFactor float64 `gorm:"column:temporal_decay_factor;not null;default:1.0" json:"temporal_decay_factor"`

	CalculatedAt time.Time `gorm:"column:calculated_at;not null;default:now()" json:"calculated_at"`
}

func (VeracityScoreRecord) TableName() string { return "veracity_score_record" }

// VeracityHistoryEntry is the append-only audit trail of recomputations,
// ordered by CalculatedAt.
type VeracityHistoryEntry struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	TargetType TargetType `gorm:"column:target_type;not null;index:idx_history_target" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_history_target" json:"target_id"`

	OldScore float64 `gorm:"column:old_score;not null" json:"old_score"`
	NewScore float64 `gorm:"column:new_score;not null" json:"new_score"`
	Delta    float64 `gorm:"column:delta;not null" json:"delta"`
	Reason   string  `gorm:"column:reason;not null" json:"reason"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CalculatedAt time.Time `gorm:"column:calculated_at;not null;default:now();index:idx_history_calculated_at" json:"calculated_at"`
}

func (VeracityHistoryEntry) TableName() string { return "veracity_history_entry" }
