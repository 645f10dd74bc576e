package cache

import (
	"context"
	"testing"
	"time"

	"echoreport/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ DraftCache = (*InMemoryDraftCache)(nil)

func TestInMemoryDraftCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryDraftCache(0)

	draft := &model.Draft{ID: "s1", Values: map[string]string{"Name": "Jane"}}
	require.NoError(t, c.Save(ctx, draft))
	draft.Values["Name"] = "changed after save"

	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Values["Name"])

	got.Values["Name"] = "changed after get"
	again, _ := c.Get(ctx, "s1")
	assert.Equal(t, "Jane", again.Values["Name"])

	require.NoError(t, c.Delete(ctx, "s1"))
	_, err = c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestInMemoryDraftCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	c := NewInMemoryDraftCache(time.Hour)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Save(ctx, &model.Draft{ID: "s1"}))

	now = now.Add(59 * time.Minute)
	_, err := c.Get(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, c.Save(ctx, &model.Draft{ID: "s1"}))
	now = now.Add(59 * time.Minute)
	_, err = c.Get(ctx, "s1")
	require.NoError(t, err, "saving refreshes the expiry")

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
