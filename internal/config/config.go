// Package config provides configuration management for the wallet engine.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/fileutil"
)

// Config represents the application configuration.
type Config struct {
	Version  int             `yaml:"version"`
	Home     string          `yaml:"home"`
	Networks []NetworkConfig `yaml:"networks"`
	Polling  PollingConfig   `yaml:"polling"`
	Swap     SwapConfig      `yaml:"swap"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// NetworkConfig defines one configured chain.
type NetworkConfig struct {
	Name           string        `yaml:"name"`
	RPC            string        `yaml:"rpc"`
	ChainID        int64         `yaml:"chain_id"`
	Symbol         string        `yaml:"symbol"`
	NativeDecimals int           `yaml:"native_decimals"`
	Router         string        `yaml:"router,omitempty"`
	Indexer        string        `yaml:"indexer,omitempty"`
	Tokens         []TokenConfig `yaml:"tokens,omitempty"`
}

// TokenConfig defines a built-in token to track on a network.
type TokenConfig struct {
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Decimals int    `yaml:"decimals"`
}

// Network converts the configured entry to its runtime form.
func (nc *NetworkConfig) Network() chain.Network {
	return chain.Network{
		Name:           nc.Name,
		RPCURL:         nc.RPC,
		ChainID:        nc.ChainID,
		Symbol:         nc.Symbol,
		NativeDecimals: nc.NativeDecimals,
		Router:         nc.Router,
		IndexerURL:     nc.Indexer,
	}
}

// DefaultTokens returns the network's built-in tokens in runtime form.
func (nc *NetworkConfig) DefaultTokens() []chain.Token {
	out := make([]chain.Token, 0, len(nc.Tokens))
	for _, t := range nc.Tokens {
		out = append(out, chain.Token{
			Address:  t.Address,
			Symbol:   t.Symbol,
			Name:     t.Name,
			Decimals: t.Decimals,
			Balance:  "0",
			ChainID:  nc.ChainID,
		})
	}
	return out
}

// PollingConfig defines balance and history polling behavior.
type PollingConfig struct {
	// BalanceDelayMS is the fixed delay between per-token balance calls.
	BalanceDelayMS int `yaml:"balance_delay_ms"`

	// IndexerCooldownMS is the pause between the two history query types.
	IndexerCooldownMS int `yaml:"indexer_cooldown_ms"`

	// HistoryLimit caps the number of merged history records returned.
	HistoryLimit int `yaml:"history_limit"`
}

// SwapConfig defines swap behavior.
type SwapConfig struct {
	// QuoteDebounceMS is the settle window before a quote request is issued.
	QuoteDebounceMS int `yaml:"quote_debounce_ms"`

	// DeadlineSeconds is the router deadline offset for swap transactions.
	DeadlineSeconds int `yaml:"deadline_seconds"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	if err := fileutil.EnsureDir(path, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetHome returns the wallet home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// VaultPath returns the path of the persisted vault blob.
func (c *Config) VaultPath() string {
	return filepath.Join(c.Home, "vault.age")
}

// CachePath returns the path of the token metadata cache.
func (c *Config) CachePath() string {
	return filepath.Join(c.Home, "metadata-cache.json")
}

// Network returns the configured network with the given chain id, or nil.
func (c *Config) Network(chainID int64) *NetworkConfig {
	for i := range c.Networks {
		if c.Networks[i].ChainID == chainID {
			return &c.Networks[i]
		}
	}
	return nil
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// DefaultHome returns the default wallet home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".3twenty"
	}
	return filepath.Join(home, ".3twenty")
}
