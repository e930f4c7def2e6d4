package store

import (
	"context"
	"testing"
	"time"

	"storepos/checkout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, id string, at time.Time) *checkout.Session {
	t.Helper()
	s, err := checkout.NewSession(id, "cashier-1", checkout.ChannelPOS, nil, at)
	require.NoError(t, err)
	return s
}

func TestMemorySessions_CreateGet(t *testing.T) {
	st := NewMemorySessions()
	ctx := context.Background()
	s := newSession(t, "a", time.Now())

	require.NoError(t, st.Create(ctx, s))
	assert.Equal(t, int64(1), s.Version)

	got, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "cashier-1", got.CashierID)

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessions_ReturnsCopies(t *testing.T) {
	st := NewMemorySessions()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newSession(t, "a", time.Now())))

	got, err := st.Get(ctx, "a")
	require.NoError(t, err)
	got.Cart.Lines = append(got.Cart.Lines, checkout.LineItem{ProductID: 1, SizeLabel: "M", Quantity: 1})

	again, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, again.Cart.IsEmpty())
}

func TestMemorySessions_OptimisticUpdate(t *testing.T) {
	st := NewMemorySessions()
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, newSession(t, "a", time.Now())))

	first, _ := st.Get(ctx, "a")
	second, _ := st.Get(ctx, "a")

	first.Status = checkout.StatusProcessing
	require.NoError(t, st.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Status = checkout.StatusClosed
	assert.ErrorIs(t, st.Update(ctx, second), ErrVersionConflict)

	got, _ := st.Get(ctx, "a")
	assert.Equal(t, checkout.StatusProcessing, got.Status)
}

func TestMemorySessions_UpdateDeleted(t *testing.T) {
	st := NewMemorySessions()
	ctx := context.Background()
	s := newSession(t, "a", time.Now())
	require.NoError(t, st.Create(ctx, s))

	require.NoError(t, st.Delete(ctx, "a"))

	assert.ErrorIs(t, st.Update(ctx, s), ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(ctx, "a"), ErrSessionNotFound)
}

func TestMemorySessions_DeleteIdle(t *testing.T) {
	st := NewMemorySessions()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, st.Create(ctx, newSession(t, "old", now.Add(-3*time.Hour))))
	require.NoError(t, st.Create(ctx, newSession(t, "fresh", now)))
	busy := newSession(t, "busy", now.Add(-3*time.Hour))
	busy.Status = checkout.StatusProcessing
	require.NoError(t, st.Create(ctx, busy))

	n, err := st.DeleteIdle(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = st.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(ctx, "busy")
	assert.NoError(t, err)
}
