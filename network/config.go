package network

import "fmt"

// Environment variables consulted by ResolveConfig.
const (
	EnvRPCURL  = "REVLEDGER_RPC_URL"
	EnvRPCUser = "REVLEDGER_RPC_USER"
	EnvRPCPass = "REVLEDGER_RPC_PASS"
)

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// NetworkPresets contains default RPC configurations for local test networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "revledger", Password: "revledger"},
	"testnet": {URL: "http://localhost:18332", User: "revledger", Password: "revledger"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. explicit settings (flags or config file)
//  2. environment variables (REVLEDGER_RPC_URL, REVLEDGER_RPC_USER, REVLEDGER_RPC_PASS)
//  3. network presets (regtest/testnet only)
func ResolveConfig(explicit *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	if env != nil {
		overlay(&result.URL, env[EnvRPCURL])
		overlay(&result.User, env[EnvRPCUser])
		overlay(&result.Password, env[EnvRPCPass])
	}
	if explicit != nil {
		overlay(&result.URL, explicit.URL)
		overlay(&result.User, explicit.User)
		overlay(&result.Password, explicit.Password)
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s requires rpcurl or %s", ErrMissingRPCConfig, network, EnvRPCURL)
	}
	return &result, nil
}
