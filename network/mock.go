package network

import "context"

// MockHeightSource is a test double for HeightSource.
type MockHeightSource struct {
	GetBestBlockHeightFn func(ctx context.Context) (uint64, error)
}

func (m *MockHeightSource) GetBestBlockHeight(ctx context.Context) (uint64, error) {
	return m.GetBestBlockHeightFn(ctx)
}
