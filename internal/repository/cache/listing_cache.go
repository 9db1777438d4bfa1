package cache

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"playerhire/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "player_listing:"

	// watched writes lose to a concurrent writer at most this many times
	maxWatchAttempts = 3
)

// tombstoneVersion outranks every real version so a deleted listing is never
// filled back in.
const tombstoneVersion = math.MaxInt64

type entry struct {
	Version int64                 `json:"version"`
	Deleted bool                  `json:"deleted,omitempty"`
	Listing *domain.PlayerListing `json:"listing,omitempty"`
}

type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &ListingCache{client: client, ttl: ttl}, nil
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// GetListing returns nil, nil on a miss or for a deleted listing.
func (c *ListingCache) GetListing(ctx context.Context, id uuid.UUID) (*domain.PlayerListing, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Deleted {
		return nil, nil
	}
	return e.Listing, nil
}

// SetListing stores l unless the cache already holds the same or a newer
// version of it, or a tombstone.
func (c *ListingCache) SetListing(ctx context.Context, l *domain.PlayerListing) error {
	data, err := json.Marshal(entry{Version: l.Version, Listing: l})
	if err != nil {
		return err
	}
	return c.putIfNewer(ctx, key(l.ID), l.Version, data)
}

// DeleteListing leaves a tombstone for the TTL so an in-flight read of the
// old row cannot repopulate the entry.
func (c *ListingCache) DeleteListing(ctx context.Context, id uuid.UUID) error {
	data, err := json.Marshal(entry{Version: tombstoneVersion, Deleted: true})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(id), data, c.ttl).Err()
}

// InvalidateListing drops the entry outright.
func (c *ListingCache) InvalidateListing(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, key(id)).Err()
}

func (c *ListingCache) Close() error {
	return c.client.Close()
}

func (c *ListingCache) putIfNewer(ctx context.Context, k string, version int64, data []byte) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if !replaceable(current, version) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, c.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchAttempts; i++ {
		err := c.client.Watch(ctx, txf, k)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// replaceable reports whether a cached value may be overwritten by version.
// Unreadable values are always replaced.
func replaceable(current []byte, version int64) bool {
	if len(current) == 0 {
		return true
	}
	var e entry
	if err := json.Unmarshal(current, &e); err != nil {
		return true
	}
	return e.Version < version
}
