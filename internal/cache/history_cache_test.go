package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GhefinIndra/EduVate/internal/model"
)

func newTestCache(t *testing.T) (*HistoryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewHistoryCache(client, 60*time.Second, 5*time.Second), mr
}

func TestHistoryCache_SetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	messages := []model.Message{
		{ID: 1, SessionID: 7, Role: model.RoleUser, Content: "what is osmosis?"},
		{ID: 2, SessionID: 7, Role: model.RoleAssistant, Content: "osmosis is..."},
	}
	require.NoError(t, c.SetHistory(ctx, 7, messages))

	got, hit, err := c.GetHistory(ctx, 7)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 2)
	assert.Equal(t, "what is osmosis?", got[0].Content)
	assert.Equal(t, model.RoleAssistant, got[1].Role)
}

func TestHistoryCache_MissIsNotAnError(t *testing.T) {
	c, _ := newTestCache(t)

	got, hit, err := c.GetHistory(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
}

func TestHistoryCache_DeleteAndDirtyMarker(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetHistory(ctx, 3, []model.Message{{ID: 1, SessionID: 3, Role: model.RoleUser, Content: "q"}}))
	require.NoError(t, c.MarkDirty(ctx, 3))
	require.NoError(t, c.DeleteHistory(ctx, 3))

	_, hit, err := c.GetHistory(ctx, 3)
	require.NoError(t, err)
	assert.False(t, hit)

	dirty, err := c.IsDirty(ctx, 3)
	require.NoError(t, err)
	assert.True(t, dirty)

	// other sessions are unaffected
	dirty, err = c.IsDirty(ctx, 4)
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestHistoryCache_DirtyMarkerExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.MarkDirty(ctx, 5))
	mr.FastForward(6 * time.Second)

	dirty, err := c.IsDirty(ctx, 5)
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestHistoryCache_HistoryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetHistory(ctx, 8, []model.Message{{ID: 1, SessionID: 8, Role: model.RoleUser, Content: "q"}}))
	mr.FastForward(61 * time.Second)

	_, hit, err := c.GetHistory(ctx, 8)
	require.NoError(t, err)
	assert.False(t, hit)
}
