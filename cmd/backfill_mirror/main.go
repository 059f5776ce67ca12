package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/openverity/verigraph-backend/internal/data/db"
	neo4jgraph "github.com/openverity/verigraph-backend/internal/data/graph"
	graphrepos "github.com/openverity/verigraph-backend/internal/data/repos/graph"
	types "github.com/openverity/verigraph-backend/internal/domain"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
	"github.com/openverity/verigraph-backend/internal/platform/neo4jdb"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var nodes idList
	var dryRun bool
	var batch int
	flag.Var(&nodes, "node", "node id to backfill (repeatable; default all)")
	flag.BoolVar(&dryRun, "dry-run", false, "print planned sync without writing to neo4j")
	flag.IntVar(&batch, "batch", 500, "rows per mirror write")
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Printf("init postgres: %v\n", err)
		os.Exit(1)
	}
	gdb := postgresService.DB()

	ctx := context.Background()

	var nodeRows []*types.Node
	var edgeRows []*types.Edge
	if len(nodes) > 0 {
		ids := make([]uuid.UUID, 0, len(nodes))
		for _, s := range nodes {
			id, err := uuid.Parse(strings.TrimSpace(s))
			if err == nil && id != uuid.Nil {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			fmt.Println("no valid node id values provided")
			return
		}
		nodeRows, err = graphrepos.NewNodeRepo(gdb, log).GetByIDs(ctx, nil, ids)
		if err == nil {
			err = gdb.WithContext(ctx).
				Where("source_node_id IN ? AND target_node_id IN ?", ids, ids).
				Find(&edgeRows).Error
		}
	} else {
		err = gdb.WithContext(ctx).Find(&nodeRows).Error
		if err == nil {
			err = gdb.WithContext(ctx).Find(&edgeRows).Error
		}
	}
	if err != nil {
		fmt.Printf("load graph rows: %v\n", err)
		os.Exit(1)
	}

	if dryRun {
		fmt.Printf("[dry-run] would sync %d nodes and %d edges in batches of %d\n", len(nodeRows), len(edgeRows), batch)
		return
	}

	neo4jClient, err := neo4jdb.NewFromEnv(log)
	if err != nil || neo4jClient == nil {
		fmt.Printf("neo4j unavailable (NEO4J_URI missing?): %v\n", err)
		os.Exit(1)
	}
	defer neo4jClient.Close(ctx)

	mirror := neo4jgraph.NewVeracityMirror(neo4jClient, log)
	if err := mirror.SyncGraphChunked(ctx, nodeRows, edgeRows, batch); err != nil {
		fmt.Printf("mirror sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("done; synced %d nodes and %d edges\n", len(nodeRows), len(edgeRows))
}
