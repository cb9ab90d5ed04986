package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/go-redis/redis/v8"
)

const searchPrefix = "rooms:search:"

// SearchCache keeps full room search results keyed by their normalized filters.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

// Key builds the cache key of a search; the page is not part of it.
func Key(filter *entity.RoomSearch) string {
	return fmt.Sprintf("%s%s:%s:%d:%s:%s",
		searchPrefix,
		filter.DateFrom.Format(entity.DateLayout),
		filter.DateTo.Format(entity.DateLayout),
		filter.RoomSize,
		strings.Join(filter.Amenities, ","),
		strings.Join(filter.Tags, ","),
	)
}

// Get returns the cached rooms and whether the key was present.
func (c *SearchCache) Get(ctx context.Context, filter *entity.RoomSearch) ([]*entity.Room, bool, error) {
	data, err := c.client.Get(ctx, Key(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached search: %w", err)
	}

	var rooms []*entity.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached search: %w", err)
	}
	return rooms, true, nil
}

func (c *SearchCache) Set(ctx context.Context, filter *entity.RoomSearch, rooms []*entity.Room) error {
	data, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("failed to marshal search: %w", err)
	}

	if err := c.client.Set(ctx, Key(filter), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache search: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached search. Any booking change can alter any result.
func (c *SearchCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, searchPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cached searches: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cached searches: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
