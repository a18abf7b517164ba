package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/miqat/internal/geo"
)

const (
	redisPrefix    = "miqat:"
	redisTimeout   = 2 * time.Second
	minScheduleTTL = time.Hour
)

// Redis is a Cache shared through a Redis server, so several instances (the
// CLI, the API server, a status bar) fetch each day only once.
type Redis struct {
	rdb *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to the server at addr and checks it is reachable.
func NewRedis(addr, password string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

// Close releases the connection pool.
func (c *Redis) Close() error {
	return c.rdb.Close()
}

// scheduleTTL keeps an entry until the day after its date has ended.
func scheduleTTL(key Key) time.Duration {
	y, m, d := key.Date.Date()
	expires := time.Date(y, m, d, 0, 0, 0, 0, key.Date.Location()).AddDate(0, 0, 2)
	if ttl := time.Until(expires); ttl > minScheduleTTL {
		return ttl
	}
	return minScheduleTTL
}

func (c *Redis) load(key string, v any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache entry is corrupt")
		return false
	}
	return true
}

func (c *Redis) save(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write redis key %s: %w", key, err)
	}
	return nil
}

// LoadSchedule implements Cache.
func (c *Redis) LoadSchedule(key Key) *ScheduleEntry {
	var entry ScheduleEntry
	if !c.load(redisPrefix+"schedule:"+key.hash(), &entry) || entry.Date != key.day() {
		return nil
	}
	return &entry
}

// SaveSchedule implements Cache.
func (c *Redis) SaveSchedule(key Key, entry *ScheduleEntry) error {
	stored := *entry
	stored.Date = key.day()
	return c.save(redisPrefix+"schedule:"+key.hash(), stored, scheduleTTL(key))
}

// LoadGeo implements Cache.
func (c *Redis) LoadGeo() *geo.Location {
	var entry GeoEntry
	if !c.load(redisPrefix+"geo", &entry) {
		return nil
	}
	return &entry.Location
}

// SaveGeo implements Cache. The entry expires after 24 hours.
func (c *Redis) SaveGeo(loc *geo.Location) error {
	return c.save(redisPrefix+"geo", GeoEntry{Location: *loc, CachedAt: time.Now()}, geoTTL)
}
