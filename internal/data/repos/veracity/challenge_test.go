package veracity

import (
	"context"
	"testing"

	"github.com/openverity/verigraph-backend/internal/data/repos/testutil"
	types "github.com/openverity/verigraph-backend/internal/domain"
)

func TestChallengeRepoListByTarget(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewChallengeRepo(db, testutil.Logger(t))

	node := testutil.SeedNode(t, ctx, tx, "claim", 0.5)
	other := testutil.SeedNode(t, ctx, tx, "other", 0.5)

	testutil.SeedChallenge(t, ctx, tx, node.ID, types.ChallengeOpen, "")
	testutil.SeedChallenge(t, ctx, tx, node.ID, types.ChallengeResolved, types.OutcomeUpheld)
	testutil.SeedChallenge(t, ctx, tx, other.ID, types.ChallengeOpen, "")

	rows, err := repo.ListByTarget(ctx, tx, types.TargetNode, node.ID)
	if err != nil {
		t.Fatalf("ListByTarget: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByTarget returned %d rows, want 2", len(rows))
	}

	var open, against int
	for _, ch := range rows {
		if ch.IsOpen() {
			open++
		}
		if ch.ResolvedAgainstTarget() {
			against++
		}
	}
	if open != 1 || against != 1 {
		t.Fatalf("open=%d resolvedAgainst=%d, want 1 and 1", open, against)
	}
}
