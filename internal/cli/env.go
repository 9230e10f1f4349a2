package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/revledger-go/config"
	"github.com/bitfsorg/revledger-go/logging"
	"github.com/bitfsorg/revledger-go/network"
	"github.com/bitfsorg/revledger-go/revshare"
)

// chainClockTimeout bounds each block height query.
const chainClockTimeout = 10 * time.Second

// ledgerEnv is an opened ledger plus everything that must be closed with it.
type ledgerEnv struct {
	Config config.Config
	Ledger *revshare.Ledger
	Log    *logrus.Logger
	Caller revshare.Identity

	closers []func() error
}

// Close releases the store and the log file.
func (e *ledgerEnv) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadConfig reads and validates <datadir>/config.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.LoadConfig(config.ConfigPath(opts.DataDir))
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return cfg, WrapExitError(ExitCommandError, "ledger not initialized (run revledger init)", err)
		}
		return cfg, WrapExitError(ExitCommandError, "load config", err)
	}
	// The data directory on the command line wins over the one in the file.
	cfg.DataDir = opts.DataDir
	if err := config.ValidateLedgerConfig(cfg); err != nil {
		return cfg, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openLedger opens the ledger described by the data directory's config.
func openLedger(opts *RootOptions) (*ledgerEnv, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	env := &ledgerEnv{Config: cfg}
	fail := func(msg string, err error) (*ledgerEnv, error) {
		_ = env.Close()
		return nil, WrapExitError(ExitCommandError, msg, err)
	}

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fail("open log", err)
	}
	env.Log = logger
	env.closers = append(env.closers, closeLog)

	clock, err := newClock(cfg)
	if err != nil {
		return fail("configure clock", err)
	}

	ownershipFile, err := LoadOwnership(config.OwnershipPath(cfg.DataDir))
	if err != nil {
		return fail("load ownership", err)
	}
	ownership, err := ownershipFile.Lookup()
	if err != nil {
		return fail("load ownership", err)
	}

	store, err := revshare.OpenBoltStore(config.LedgerPath(cfg.DataDir))
	if err != nil {
		return fail("open ledger", err)
	}
	env.closers = append(env.closers, store.Close)

	owner := revshare.Identity(strings.TrimSpace(cfg.Owner))
	ledger, err := revshare.NewLedger(owner, store, ownership,
		revshare.WithClock(clock),
		revshare.WithLogger(logger.WithField("datadir", cfg.DataDir)),
	)
	if err != nil {
		return fail("open ledger", err)
	}
	env.Ledger = ledger

	env.Caller = owner
	if opts.As != "" {
		env.Caller = revshare.Identity(opts.As)
	}
	return env, nil
}

// newClock builds the distribution clock named by cfg.Clock.
func newClock(cfg config.Config) (revshare.Clock, error) {
	switch cfg.Clock {
	case config.ClockChain:
		rpcCfg, err := network.ResolveConfig(&network.RPCConfig{
			URL:      cfg.RPCURL,
			User:     cfg.RPCUser,
			Password: cfg.RPCPassword,
		}, environ(), cfg.Network)
		if err != nil {
			return nil, err
		}
		return network.NewChainClock(network.NewRPCClient(*rpcCfg), chainClockTimeout)
	case config.ClockWall:
		return revshare.WallClock{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidClock, cfg.Clock)
	}
}

// environ returns the process environment as a map.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// withLedger opens the ledger, runs fn, and closes the ledger.
func withLedger(opts *RootOptions, fn func(env *ledgerEnv) error) (err error) {
	env, err := openLedger(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(); cerr != nil && err == nil {
			err = WrapExitError(ExitCommandError, "close ledger", cerr)
		}
	}()
	return fn(env)
}
