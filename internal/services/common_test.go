package services

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func node(weight float64) *types.Node {
	return &types.Node{
		ID:         uuid.New(),
		Label:      "n",
		Weight:     weight,
		Properties: datatypes.JSON([]byte("{}")),
	}
}

func edge(from, to uuid.UUID, edgeType string, weight float64) *types.Edge {
	return &types.Edge{
		ID:           uuid.New(),
		SourceNodeID: from,
		TargetNodeID: to,
		EdgeTypeID:   edgeType,
		Weight:       weight,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
