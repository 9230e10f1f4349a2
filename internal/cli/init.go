package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/revledger-go/config"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Config config.Config
	Force  bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts, Config: config.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a ledger configuration in the data directory",
		Long: `Create <datadir>/config. The owner is the only identity allowed to
set the investment contract, record revenue, and distribute it.

Example:
  revledger init --owner ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Config.Owner, "owner", "", "ledger owner identity (required)")
	cmd.Flags().StringVar(&opts.Config.Network, "network", opts.Config.Network, "network (mainnet|testnet|regtest)")
	cmd.Flags().StringVar(&opts.Config.Clock, "clock", opts.Config.Clock, "distribution clock (wall|chain)")
	cmd.Flags().StringVar(&opts.Config.RPCURL, "rpc-url", "", "node JSON-RPC URL for the chain clock")
	cmd.Flags().StringVar(&opts.Config.RPCUser, "rpc-user", "", "node JSON-RPC user")
	cmd.Flags().StringVar(&opts.Config.RPCPassword, "rpc-pass", "", "node JSON-RPC password")
	cmd.Flags().StringVar(&opts.Config.LogLevel, "log-level", opts.Config.LogLevel, "log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.Config.LogFile, "log-file", "", "log file (default stderr)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func runInit(opts *InitOptions, w io.Writer) error {
	cfg := opts.Config
	cfg.DataDir = opts.DataDir
	if err := config.ValidateLedgerConfig(cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	path := config.ConfigPath(cfg.DataDir)
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists (use --force to overwrite)", path))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return WrapExitError(ExitCommandError, "stat config", err)
	}

	if err := config.SaveConfig(path, cfg); err != nil {
		return WrapExitError(ExitCommandError, "save config", err)
	}

	return NewOutputFormatter(opts.Format, w).Print(map[string]string{
		"config": path,
		"owner":  cfg.Owner,
	}, func(w io.Writer) {
		fmt.Fprintf(w, "Initialized ledger in %s (owner %s)\n", cfg.DataDir, cfg.Owner)
	})
}
