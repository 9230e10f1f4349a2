package network

import (
	"context"
	"sync"
	"time"
)

// HeightSource reports the current chain tip height.
type HeightSource interface {
	GetBestBlockHeight(ctx context.Context) (uint64, error)
}

// Compile-time interface check.
var _ HeightSource = (*RPCClient)(nil)

// ChainClock stamps distributions with the best block height. Readings
// never decrease: after a reorg to a shorter chain the last height seen
// is returned instead.
type ChainClock struct {
	source  HeightSource
	timeout time.Duration

	mu   sync.Mutex
	last uint64
}

// NewChainClock creates a clock backed by source. Each reading is bounded
// by timeout; zero means no timeout.
func NewChainClock(source HeightSource, timeout time.Duration) (*ChainClock, error) {
	if source == nil {
		return nil, ErrNilHeightSource
	}
	return &ChainClock{source: source, timeout: timeout}, nil
}

// Now returns the current block height.
func (c *ChainClock) Now() (uint64, error) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	height, err := c.source.GetBestBlockHeight(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if height > c.last {
		c.last = height
	}
	return c.last, nil
}
