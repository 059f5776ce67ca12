// Package graph mirrors scored graph entities into a Neo4j read model for
// ad hoc exploration. The Postgres store stays the source of truth; every
// sync here is best effort and nil-safe when no client is configured.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/errgroup"

	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
	"github.com/openverity/verigraph-backend/internal/platform/neo4jdb"
)

// VeracityMirror implements the scorer's ScoreMirror against Neo4j.
type VeracityMirror struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewVeracityMirror(client *neo4jdb.Client, log *logger.Logger) *VeracityMirror {
	return &VeracityMirror{client: client, log: log.With("service", "VeracityMirror")}
}

func (m *VeracityMirror) enabled() bool {
	return m != nil && m.client != nil && m.client.Driver != nil
}

// MirrorTargetScore pushes one committed weight onto the mirrored node or
// relationship.
func (m *VeracityMirror) MirrorTargetScore(ctx context.Context, targetType types.TargetType, targetID uuid.UUID, weight float64) error {
	if !m.enabled() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := m.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: m.client.Database,
	})
	defer session.Close(ctx)

	query := `MATCH (n:Claim {id: $id}) SET n.weight = $weight, n.synced_at = $synced_at`
	if targetType == types.TargetEdge {
		query = `MATCH ()-[e:RELATES {id: $id}]->() SET e.weight = $weight, e.synced_at = $synced_at`
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"id":        targetID.String(),
			"weight":    weight,
			"synced_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("mirror %s %s: %w", targetType, targetID, err)
	}
	return nil
}

// SyncGraph upserts a batch of nodes and edges into the mirror, used for
// backfill. Schema setup is best effort; it can fail for restricted users.
func (m *VeracityMirror) SyncGraph(ctx context.Context, nodes []*types.Node, edges []*types.Edge) error {
	if !m.enabled() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	nodeRows := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || n.ID == uuid.Nil {
			continue
		}
		primarySource := ""
		if n.PrimarySourceID != nil && *n.PrimarySourceID != uuid.Nil {
			primarySource = n.PrimarySourceID.String()
		}
		nodeRows = append(nodeRows, map[string]any{
			"id":                n.ID.String(),
			"label":             n.Label,
			"weight":            n.Weight,
			"is_immutable":      n.IsImmutable,
			"primary_source_id": primarySource,
			"properties_json": func() string {
				if len(n.Properties) == 0 {
					return ""
				}
				return string(n.Properties)
			}(),
			"synced_at": now,
		})
	}

	edgeRows := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		if e == nil || e.ID == uuid.Nil || e.SourceNodeID == uuid.Nil || e.TargetNodeID == uuid.Nil {
			continue
		}
		edgeRows = append(edgeRows, map[string]any{
			"id":           e.ID.String(),
			"from_id":      e.SourceNodeID.String(),
			"to_id":        e.TargetNodeID.String(),
			"edge_type_id": e.EdgeTypeID,
			"weight":       e.Weight,
			"is_immutable": e.IsImmutable,
			"synced_at":    now,
		})
	}

	session := m.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: m.client.Database,
	})
	defer session.Close(ctx)

	if res, err := session.Run(ctx, `CREATE CONSTRAINT claim_id_unique IF NOT EXISTS FOR (c:Claim) REQUIRE c.id IS UNIQUE`, nil); err != nil {
		m.log.Warn("neo4j schema init failed (continuing)", "error", err)
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodeRows) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (c:Claim {id: n.id})
SET c += n
`, map[string]any{"nodes": nodeRows})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		if len(edgeRows) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $edges AS r
MATCH (a:Claim {id: r.from_id})
MATCH (b:Claim {id: r.to_id})
MERGE (a)-[e:RELATES {id: r.id}]->(b)
SET e.edge_type_id = r.edge_type_id,
    e.weight = r.weight,
    e.is_immutable = r.is_immutable,
    e.synced_at = r.synced_at
`, map[string]any{"edges": edgeRows})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("sync graph mirror: %w", err)
	}
	return nil
}

// SyncGraphChunked splits large backfills into batches synced with bounded
// parallelism.
func (m *VeracityMirror) SyncGraphChunked(ctx context.Context, nodes []*types.Node, edges []*types.Edge, batchSize int) error {
	if !m.enabled() {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(nodes); start += batchSize {
		end := start + batchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		chunk := nodes[start:end]
		g.Go(func() error {
			return m.SyncGraph(gctx, chunk, nil)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Edges go after all nodes exist so MATCH does not miss endpoints.
	for start := 0; start < len(edges); start += batchSize {
		end := start + batchSize
		if end > len(edges) {
			end = len(edges)
		}
		if err := m.SyncGraph(ctx, nil, edges[start:end]); err != nil {
			return err
		}
	}
	return nil
}
