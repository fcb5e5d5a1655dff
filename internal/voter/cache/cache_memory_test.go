package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterdata/internal/voter/models"
	"voterdata/pkg/platform/sentinel"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewInMemoryCache(time.Hour, WithClock(clock.Now))
	record := &models.VoterRecord{EPICNo: "ABC1234567", Name: "Asha", DataSource: models.DataSourceAPI}

	t.Run("miss before set", func(t *testing.T) {
		_, err := c.Get(ctx, record.EPICNo)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("hit returns an equal snapshot", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, record))
		got, err := c.Get(ctx, record.EPICNo)
		require.NoError(t, err)
		assert.Equal(t, record, got)
		assert.NotSame(t, record, got)
	})

	t.Run("snapshot is isolated from caller mutation", func(t *testing.T) {
		got, err := c.Get(ctx, record.EPICNo)
		require.NoError(t, err)
		got.Name = "changed"
		again, err := c.Get(ctx, record.EPICNo)
		require.NoError(t, err)
		assert.Equal(t, "Asha", again.Name)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		clock.now = clock.now.Add(time.Hour)
		_, err := c.Get(ctx, record.EPICNo)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.Zero(t, c.Len(), "expired entries are dropped on read")
	})

	t.Run("delete evicts and is idempotent", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, record))
		require.NoError(t, c.Delete(ctx, record.EPICNo))
		require.NoError(t, c.Delete(ctx, record.EPICNo))
		_, err := c.Get(ctx, record.EPICNo)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("nil record is ignored", func(t *testing.T) {
		assert.NoError(t, c.Set(ctx, nil))
	})
}
