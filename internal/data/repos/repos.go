package repos

import (
	"gorm.io/gorm"

	"github.com/openverity/verigraph-backend/internal/data/repos/graph"
	"github.com/openverity/verigraph-backend/internal/data/repos/veracity"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type NodeRepo = graph.NodeRepo
type EdgeRepo = graph.EdgeRepo

type EvidenceRepo = veracity.EvidenceRepo
type SourceRepo = veracity.SourceRepo
type ChallengeRepo = veracity.ChallengeRepo
type VoteRepo = veracity.VoteRepo
type ScoreRecordRepo = veracity.ScoreRecordRepo
type HistoryRepo = veracity.HistoryRepo

var NewNodeRepo = graph.NewNodeRepo
var NewEdgeRepo = graph.NewEdgeRepo
var NewEvidenceRepo = veracity.NewEvidenceRepo
var NewSourceRepo = veracity.NewSourceRepo
var NewChallengeRepo = veracity.NewChallengeRepo
var NewVoteRepo = veracity.NewVoteRepo
var NewScoreRecordRepo = veracity.NewScoreRecordRepo
var NewHistoryRepo = veracity.NewHistoryRepo

// All bundles every repo over one gorm handle.
type All struct {
	Nodes        NodeRepo
	Edges        EdgeRepo
	Evidence     EvidenceRepo
	Sources      SourceRepo
	Challenges   ChallengeRepo
	Votes        VoteRepo
	ScoreRecords ScoreRecordRepo
	History      HistoryRepo
}

func NewAll(db *gorm.DB, log *logger.Logger) All {
	return All{
		Nodes:        NewNodeRepo(db, log),
		Edges:        NewEdgeRepo(db, log),
		Evidence:     NewEvidenceRepo(db, log),
		Sources:      NewSourceRepo(db, log),
		Challenges:   NewChallengeRepo(db, log),
		Votes:        NewVoteRepo(db, log),
		ScoreRecords: NewScoreRecordRepo(db, log),
		History:      NewHistoryRepo(db, log),
	}
}
