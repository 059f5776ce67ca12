package veracity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/openverity/verigraph-backend/internal/data/repos/testutil"
	apperr "github.com/openverity/verigraph-backend/internal/pkg/errors"
)

func TestSourceRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSourceRepo(db, testutil.Logger(t))

	src := testutil.SeedSource(t, ctx, tx, "registry", 1.0)

	got, err := repo.GetByID(ctx, tx, src.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CredibilityScore != 1.0 {
		t.Fatalf("credibility = %v, want 1.0", got.CredibilityScore)
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.UpdateCredibility(ctx, tx, src.ID, 0.42); err != nil {
		t.Fatalf("UpdateCredibility: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, src.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.CredibilityScore != 0.42 {
		t.Fatalf("credibility after update = %v, want 0.42", got.CredibilityScore)
	}
}
