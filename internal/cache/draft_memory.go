package cache

import (
	"context"
	"maps"
	"sync"
	"time"

	"echoreport/internal/model"
)

// InMemoryDraftCache keeps drafts in process memory. It serves single-node
// development setups and tests; expired drafts are dropped lazily on read.
type InMemoryDraftCache struct {
	mu     sync.Mutex
	drafts map[string]memoryDraft
	ttl    time.Duration
	now    func() time.Time
}

type memoryDraft struct {
	draft     model.Draft
	expiresAt time.Time
}

// NewInMemoryDraftCache creates a draft cache whose entries expire after ttl
// of inactivity. A zero ttl keeps drafts forever.
func NewInMemoryDraftCache(ttl time.Duration) *InMemoryDraftCache {
	return &InMemoryDraftCache{
		drafts: make(map[string]memoryDraft),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *InMemoryDraftCache) Save(_ context.Context, draft *model.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := *draft
	d.Values = maps.Clone(draft.Values)
	entry := memoryDraft{draft: d}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.drafts[draft.ID] = entry
	return nil
}

func (c *InMemoryDraftCache) Get(_ context.Context, id string) (*model.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.drafts, id)
		return nil, ErrDraftNotFound
	}
	d := entry.draft
	d.Values = maps.Clone(entry.draft.Values)
	return &d, nil
}

func (c *InMemoryDraftCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, id)
	return nil
}
