package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"

	"github.com/google/uuid"
)

// StoryCache holds each user's full story list. An entry is always replaced
// whole; readers never see a partial list.
type StoryCache interface {
	// GetAllStoriesFromCache returns an empty slice on miss, never an error
	// for an absent key.
	GetAllStoriesFromCache(ctx context.Context, userID uuid.UUID) ([]*types.Story, error)
	SaveStoriesToCache(ctx context.Context, userID uuid.UUID, stories []*types.Story) error
	// InvalidateStoryCache is idempotent; deleting an absent entry succeeds.
	InvalidateStoryCache(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type redisStoryCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStoryCache(log *logger.Logger, ttl time.Duration) (StoryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return NewRedisStoryCacheWithClient(log, rdb, ttl), nil
}

// NewRedisStoryCacheWithClient wires an already-connected client; tests use
// it to point the cache at an in-process redis.
func NewRedisStoryCacheWithClient(log *logger.Logger, rdb *goredis.Client, ttl time.Duration) StoryCache {
	return &redisStoryCache{
		log: log.With("service", "RedisStoryCache"),
		rdb: rdb,
		ttl: ttl,
	}
}

func storyListKey(userID uuid.UUID) string {
	return fmt.Sprintf("stories:user:%s", userID)
}

func (c *redisStoryCache) GetAllStoriesFromCache(ctx context.Context, userID uuid.UUID) ([]*types.Story, error) {
	raw, err := c.rdb.Get(ctx, storyListKey(userID)).Bytes()
	if err == goredis.Nil {
		return []*types.Story{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get stories: %w", err)
	}
	var stories []*types.Story
	if err := json.Unmarshal(raw, &stories); err != nil {
		// A corrupt entry behaves like a miss so the store stays the source
		// of truth; the next save overwrites it.
		c.log.Warn("Dropping undecodable story cache entry", "user_id", userID, "error", err)
		_ = c.rdb.Del(ctx, storyListKey(userID)).Err()
		return []*types.Story{}, nil
	}
	return stories, nil
}

func (c *redisStoryCache) SaveStoriesToCache(ctx context.Context, userID uuid.UUID, stories []*types.Story) error {
	if stories == nil {
		stories = []*types.Story{}
	}
	raw, err := json.Marshal(stories)
	if err != nil {
		return fmt.Errorf("marshal stories: %w", err)
	}
	if err := c.rdb.Set(ctx, storyListKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set stories: %w", err)
	}
	return nil
}

func (c *redisStoryCache) InvalidateStoryCache(ctx context.Context, userID uuid.UUID) error {
	if err := c.rdb.Del(ctx, storyListKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del stories: %w", err)
	}
	return nil
}

func (c *redisStoryCache) Close() error {
	return c.rdb.Close()
}
