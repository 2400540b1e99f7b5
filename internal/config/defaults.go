package config

// DefaultBSCRPCURL is the default BNB Smart Chain RPC endpoint.
// Free public endpoint operated by Binance, no API key required.
const DefaultBSCRPCURL = "https://bsc-dataseed.binance.org"

// DefaultETHRPCURL is the default Ethereum RPC endpoint.
// Uses PublicNode (Allnodes), a privacy-first provider that requires no API key.
const DefaultETHRPCURL = "https://ethereum-rpc.publicnode.com"

// PancakeRouterV2 is the PancakeSwap V2 router contract on BSC.
const PancakeRouterV2 = "0x10ED43C718714eb63d5aA57B78B54704E256024E"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.3twenty",
		Networks: []NetworkConfig{
			{
				Name:           "BNB Smart Chain",
				RPC:            DefaultBSCRPCURL,
				ChainID:        56,
				Symbol:         "BNB",
				NativeDecimals: 18,
				Router:         PancakeRouterV2,
				Indexer:        "https://api.bscscan.com/api",
				Tokens: []TokenConfig{
					{
						Symbol:   "BUSD",
						Name:     "BUSD Token",
						Address:  "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56",
						Decimals: 18,
					},
					{
						Symbol:   "USDT",
						Name:     "Tether USD",
						Address:  "0x55d398326f99059fF775485246999027B3197955",
						Decimals: 18,
					},
				},
			},
			{
				Name:           "Ethereum",
				RPC:            DefaultETHRPCURL,
				ChainID:        1,
				Symbol:         "ETH",
				NativeDecimals: 18,
				Indexer:        "https://api.etherscan.io/api",
				Tokens: []TokenConfig{
					{
						Symbol:   "USDC",
						Name:     "USD Coin",
						Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
						Decimals: 6,
					},
				},
			},
		},
		Polling: PollingConfig{
			BalanceDelayMS:    250,
			IndexerCooldownMS: 1500,
			HistoryLimit:      50,
		},
		Swap: SwapConfig{
			QuoteDebounceMS: 800,
			DeadlineSeconds: 600,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.3twenty/logs/engine.log",
		},
	}
}
