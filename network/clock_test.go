package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/revledger-go/revshare"
)

// Compile-time check that ChainClock can drive a ledger.
var _ revshare.Clock = (*ChainClock)(nil)

func TestNewChainClock_NilSource(t *testing.T) {
	_, err := NewChainClock(nil, 0)
	assert.ErrorIs(t, err, ErrNilHeightSource)
}

func TestChainClock_Monotonic(t *testing.T) {
	heights := []uint64{100, 105, 103, 110}
	i := 0
	source := &MockHeightSource{GetBestBlockHeightFn: func(ctx context.Context) (uint64, error) {
		h := heights[i]
		i++
		return h, nil
	}}

	clock, err := NewChainClock(source, 0)
	require.NoError(t, err)

	var got []uint64
	for range heights {
		now, err := clock.Now()
		require.NoError(t, err)
		got = append(got, now)
	}
	assert.Equal(t, []uint64{100, 105, 105, 110}, got)
}

func TestChainClock_Error(t *testing.T) {
	boom := errors.New("node down")
	source := &MockHeightSource{GetBestBlockHeightFn: func(ctx context.Context) (uint64, error) {
		return 0, boom
	}}
	clock, err := NewChainClock(source, time.Second)
	require.NoError(t, err)

	_, err = clock.Now()
	assert.ErrorIs(t, err, boom)
}

func TestChainClock_Timeout(t *testing.T) {
	source := &MockHeightSource{GetBestBlockHeightFn: func(ctx context.Context) (uint64, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "reading should carry a deadline")
		return 7, nil
	}}
	clock, err := NewChainClock(source, 50*time.Millisecond)
	require.NoError(t, err)

	now, err := clock.Now()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), now)
}

func TestChainClock_DrivesLedger(t *testing.T) {
	client := NewRPCClient(RPCConfig{URL: newNode(t, `123`).URL})
	clock, err := NewChainClock(client, time.Second)
	require.NoError(t, err)

	const owner revshare.Identity = "owner"
	l, err := revshare.NewLedger(owner, revshare.NewMemStore(), revshare.FixedOwnership(1000), revshare.WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, l.RecordRevenue(owner, 1, 202301, 50000))
	require.NoError(t, l.DistributeRevenue(owner, 1, 202301))

	p, err := l.Period(1, 202301)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), p.DistributionTimestamp)
}
