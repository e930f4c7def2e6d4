package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingPurger struct {
	calls atomic.Int32
	ttl   atomic.Int64
	err   error
}

func (p *countingPurger) PurgeIdle(_ context.Context, ttl time.Duration) (int64, error) {
	p.calls.Add(1)
	p.ttl.Store(int64(ttl))
	return 2, p.err
}

func TestPurgeIdleSessions(t *testing.T) {
	p := &countingPurger{}
	PurgeIdleSessions(p, time.Hour, zap.NewNop())
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, int64(time.Hour), p.ttl.Load())

	failing := &countingPurger{err: errors.New("mongo down")}
	PurgeIdleSessions(failing, time.Hour, zap.NewNop())
	assert.Equal(t, int32(1), failing.calls.Load())
}

func TestStartSessionPurge_RunsImmediately(t *testing.T) {
	p := &countingPurger{}
	s, err := StartSessionPurge(time.UTC, time.Hour, 2*time.Hour, p, zap.NewNop())
	require.NoError(t, err)
	defer s.Stop()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(2*time.Hour), p.ttl.Load())
}
