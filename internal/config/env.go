package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome     = "TWENTY_HOME"
	EnvRPC      = "TWENTY_RPC"
	EnvIndexer  = "TWENTY_INDEXER"
	EnvLogLevel = "TWENTY_LOG_LEVEL"
	EnvChainID  = "TWENTY_CHAIN_ID"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
// TWENTY_RPC and TWENTY_INDEXER override the network selected by TWENTY_CHAIN_ID
// (default: the first configured network).
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	target := 0
	if v := os.Getenv(EnvChainID); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			for i := range cfg.Networks {
				if cfg.Networks[i].ChainID == id {
					target = i
					break
				}
			}
		}
	}

	if len(cfg.Networks) == 0 {
		return
	}

	if v := os.Getenv(EnvRPC); v != "" {
		cfg.Networks[target].RPC = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvIndexer); v != "" {
		cfg.Networks[target].Indexer = strings.TrimSpace(v)
	}
}
