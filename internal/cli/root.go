// Package cli implements the 3twenty command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/web3twenty/3twenty-wallet/internal/config"
	"github.com/web3twenty/3twenty-wallet/internal/metrics"
	"github.com/web3twenty/3twenty-wallet/internal/output"
	"github.com/web3twenty/3twenty-wallet/internal/wallet"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	chainID      int64

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	session   *wallet.Session
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "3twenty",
	Short: "A non-custodial multi-chain wallet engine",
	Long: `3twenty is a non-custodial wallet engine for EVM networks.

It keeps accounts in an encrypted vault, tracks token balances, swaps
through a V2-style DEX router, and merges transaction history from
Etherscan-compatible indexers.

Example:
  3twenty init
  3twenty balance --chain-id 56
  3twenty swap 0.5 native 0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return walleterr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, formatter, and the
// wallet session.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		cfg = config.Defaults()
		cfg.Home = home
	}

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	format := output.DetectFormat(os.Stdout, output.ParseFormat(outputFormat))
	formatter = output.NewFormatter(format, os.Stdout)

	session, err = wallet.NewSession(cfg, &wallet.Options{Logger: logger})
	return err
}

// cleanup releases resources.
func cleanup() {
	if session != nil {
		session.Lock()
	}
	if logger != nil {
		snap := metrics.Global.Snapshot()
		if snap.RPCCalls > 0 || snap.IndexerCalls > 0 {
			logger.Debug("rpc calls=%d errors=%d avg=%s indexer calls=%d errors=%d cache hits=%d misses=%d tx sent=%d",
				snap.RPCCalls, snap.RPCErrors, metrics.Global.AverageRPCLatency(),
				snap.IndexerCalls, snap.IndexerErrors,
				snap.CacheHits, snap.CacheMisses, snap.TxSent)
		}
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "data directory (default: ~/.3twenty)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().Int64Var(&chainID, "chain-id", 56, "network chain id")
}
