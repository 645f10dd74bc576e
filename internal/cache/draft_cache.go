package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"echoreport/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrDraftNotFound is returned when a draft is missing or has expired.
var ErrDraftNotFound = errors.New("draft not found")

// DraftCache handles Redis operations for in-progress report drafts
type DraftCache interface {
	Save(ctx context.Context, draft *model.Draft) error
	Get(ctx context.Context, id string) (*model.Draft, error)
	Delete(ctx context.Context, id string) error
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a draft cache whose entries expire after ttl of
// inactivity.
func NewDraftCache(client *redis.Client, ttl time.Duration) DraftCache {
	return &draftCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *draftCache) key(id string) string {
	return fmt.Sprintf("draft:%s", id)
}

func (c *draftCache) Save(ctx context.Context, draft *model.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(draft.ID), data, c.ttl).Err()
}

func (c *draftCache) Get(ctx context.Context, id string) (*model.Draft, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var draft model.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return &draft, nil
}

func (c *draftCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
