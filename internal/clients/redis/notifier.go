package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/openverity/verigraph-backend/internal/platform/envutil"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
	"github.com/openverity/verigraph-backend/internal/services"
)

// ScoreChangeNotifier publishes committed score changes on a redis channel
// for downstream consumers (feeds, websockets). Publishing is best effort.
type ScoreChangeNotifier struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewScoreChangeNotifier(rdb *goredis.Client, log *logger.Logger) (*ScoreChangeNotifier, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	ch := strings.TrimSpace(envutil.GetEnv("REDIS_SCORE_CHANNEL", "verigraph.score_changes", log))
	return &ScoreChangeNotifier{
		log:     log.With("service", "ScoreChangeNotifier"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (n *ScoreChangeNotifier) PublishScoreChange(ctx context.Context, change services.ScoreChange) error {
	raw, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, raw).Err()
}
