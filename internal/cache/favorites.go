// Package cache holds the server-side read caches of the API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// FavoriteIDs caches the set of maid IDs each user has favorited.
//
// A miss returns the version of the user's favorites at the time of the
// read. Set stores ids only if no Invalidate happened since that version was
// handed out, so a reader that loaded the database before a change cannot
// put the old set back.
type FavoriteIDs interface {
	Get(ctx context.Context, userID int64) (ids []string, version int64, ok bool, err error)
	Set(ctx context.Context, userID int64, version int64, ids []string) error
	Invalidate(ctx context.Context, userID int64) error
}

// Nop never stores anything. It is used when no Redis is configured.
type Nop struct{}

func (Nop) Get(context.Context, int64) ([]string, int64, bool, error) { return nil, 0, false, nil }
func (Nop) Set(context.Context, int64, int64, []string) error         { return nil }
func (Nop) Invalidate(context.Context, int64) error                   { return nil }

// setIfVersion writes KEYS[1] only while KEYS[2] still holds ARGV[1].
// A missing version key counts as 0.
var setIfVersion = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// RedisFavoriteIDs stores each user's IDs as a JSON array under
// favorites:user:<id> with a TTL, and a change counter under
// favorites:gen:<id>.
type RedisFavoriteIDs struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFavoriteIDs(client *redis.Client, ttl time.Duration) *RedisFavoriteIDs {
	return &RedisFavoriteIDs{client: client, ttl: ttl}
}

// NewRedisClient parses url (redis://...) and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func FavoritesKey(userID int64) string {
	return fmt.Sprintf("favorites:user:%d", userID)
}

func VersionKey(userID int64) string {
	return fmt.Sprintf("favorites:gen:%d", userID)
}

func (c *RedisFavoriteIDs) Get(ctx context.Context, userID int64) ([]string, int64, bool, error) {
	vals, err := c.client.MGet(ctx, FavoritesKey(userID), VersionKey(userID)).Result()
	if err != nil {
		return nil, 0, false, err
	}

	var version int64
	if s, ok := vals[1].(string); ok {
		version, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, 0, false, fmt.Errorf("decode favorites version: %w", err)
		}
	}

	s, ok := vals[0].(string)
	if !ok {
		return nil, version, false, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, version, false, fmt.Errorf("decode cached favorites: %w", err)
	}
	return ids, version, true, nil
}

func (c *RedisFavoriteIDs) Set(ctx context.Context, userID int64, version int64, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	keys := []string{FavoritesKey(userID), VersionKey(userID)}
	err = setIfVersion.Run(ctx, c.client, keys, version, string(raw), c.ttl.Milliseconds()).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Invalidate bumps the version and drops the cached set in one transaction.
func (c *RedisFavoriteIDs) Invalidate(ctx context.Context, userID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, VersionKey(userID))
		pipe.Del(ctx, FavoritesKey(userID))
		return nil
	})
	return err
}
