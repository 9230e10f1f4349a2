package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrMissingRPCConfig indicates no RPC endpoint could be resolved.
	ErrMissingRPCConfig = errors.New("network: RPC endpoint not configured")

	// ErrNilHeightSource indicates a ChainClock was built without a source.
	ErrNilHeightSource = errors.New("network: height source is nil")
)
