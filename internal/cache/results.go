package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwaldner/optionroi/internal/optimizer"
	"github.com/jwaldner/optionroi/internal/pricing"
)

// ResultStore looks up and saves optimize results by input key.
type ResultStore interface {
	Get(ctx context.Context, key string) (optimizer.Result, bool, error)
	Set(ctx context.Context, key string, res optimizer.Result) error
}

// ResultCache implements ResultStore with JSON values under
//
//	optimize:{spot}:{vol}:{rate}:{div}:{target}:{horizon}:{config}
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResultCache creates a ResultCache backed by the given Client.
func NewResultCache(c *Client, ttl time.Duration) *ResultCache {
	return &ResultCache{rdb: c.rdb, ttl: ttl}
}

// Key identifies a search by everything that determines its outcome. The
// search is deterministic, so equal keys always hold equal results.
func Key(env pricing.Environment, pred optimizer.Prediction, cfg optimizer.Config) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{
		"optimize",
		f(env.Spot), f(env.Volatility), f(env.RiskFreeRate), f(env.DividendYield),
		f(pred.TargetPrice), f(pred.Horizon),
		strconv.Itoa(cfg.MaxIterations), f(cfg.ConvergenceTolerance), f(cfg.InitialStepSize), f(cfg.MinEntryPrice),
		f(cfg.MaxStrikeRatio), f(cfg.MaxExtraExpiry),
	}, ":")
}

// Get returns the cached result and whether it was present.
func (rc *ResultCache) Get(ctx context.Context, key string) (optimizer.Result, bool, error) {
	data, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return optimizer.Result{}, false, nil
		}
		return optimizer.Result{}, false, fmt.Errorf("redis: get %s: %w", key, err)
	}

	var res optimizer.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return optimizer.Result{}, false, fmt.Errorf("redis: unmarshal %s: %w", key, err)
	}
	return res, true, nil
}

// Set stores a result with the cache TTL.
func (rc *ResultCache) Set(ctx context.Context, key string, res optimizer.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", key, err)
	}
	if err := rc.rdb.Set(ctx, key, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}
