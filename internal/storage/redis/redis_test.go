package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menupricing/internal/customize"
)

func newTestStorage(t *testing.T) *CartStorage {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	s := New(addr, os.Getenv("REDIS_TEST_PASSWORD"), 0, time.Minute)
	t.Cleanup(s.Close)
	return s
}

func TestPushIsIdempotentPerSession(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	session := uuid.NewString()
	t.Cleanup(func() { _ = s.Drop(ctx, session) })

	first := customize.Record{MenuItemID: "item-1", DisplayName: "Menu Duo", MainItemQuantity: 1, PopupSessionID: session}
	stored, err := s.Push(ctx, first)
	require.NoError(t, err)
	assert.True(t, stored)

	second := first
	second.MainItemQuantity = 3
	stored, err = s.Push(ctx, second)
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := s.Get(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MainItemQuantity)
	assert.Equal(t, "Menu Duo", got.DisplayName)
}

func TestGetMissingRecord(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPushRejectsEmptySession(t *testing.T) {
	s := NewFromClient(nil, 0)

	_, err := s.Push(context.Background(), customize.Record{MenuItemID: "item-1"})
	assert.Error(t, err)
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "cart:record:abc", buildRecordKey("abc"))
}
