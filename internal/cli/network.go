package cli

import (
	"github.com/spf13/cobra"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
)

var (
	networkName     string
	networkRPC      string
	networkSymbol   string
	networkDecimals int
	networkRouter   string
	networkIndexer  string
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured networks",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		networks, err := session.Networks()
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(networks)
		}

		table := newTable("CHAIN ID", "NAME", "SYMBOL", "SWAPS", "HISTORY")
		for _, n := range networks {
			table.AddRow(chain.FormatChainID(n.ChainID), n.Name, n.Symbol,
				yesNo(n.HasRouter()), yesNo(n.HasIndexer()))
		}
		return table.Render(formatter.Writer())
	},
}

var networkAddCmd = &cobra.Command{
	Use:   "add CHAIN_ID",
	Short: "Track a custom network",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := parseChainID(args[0])
		if err != nil {
			return err
		}

		if err := unlockSession(); err != nil {
			return err
		}

		err = session.AddNetwork(chain.Network{
			Name:           networkName,
			RPCURL:         networkRPC,
			ChainID:        id,
			Symbol:         networkSymbol,
			NativeDecimals: networkDecimals,
			Router:         networkRouter,
			IndexerURL:     networkIndexer,
		})
		if err != nil {
			return err
		}
		return formatter.Printf("Added network %s (chain %d)\n", networkName, id)
	},
}

var networkRemoveCmd = &cobra.Command{
	Use:   "remove CHAIN_ID",
	Short: "Stop tracking a custom network",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := parseChainID(args[0])
		if err != nil {
			return err
		}

		if err := unlockSession(); err != nil {
			return err
		}
		if err := session.RemoveNetwork(id); err != nil {
			return err
		}
		return formatter.Println("Removed.")
	},
}

// yesNo renders a boolean for table cells.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	networkAddCmd.Flags().StringVar(&networkName, "name", "", "network display name")
	networkAddCmd.Flags().StringVar(&networkRPC, "rpc", "", "JSON-RPC endpoint URL")
	networkAddCmd.Flags().StringVar(&networkSymbol, "symbol", "", "native asset symbol")
	networkAddCmd.Flags().IntVar(&networkDecimals, "decimals", 18, "native asset decimals")
	networkAddCmd.Flags().StringVar(&networkRouter, "router", "", "DEX router address (optional)")
	networkAddCmd.Flags().StringVar(&networkIndexer, "indexer", "", "indexer base URL (optional)")
	_ = networkAddCmd.MarkFlagRequired("name")
	_ = networkAddCmd.MarkFlagRequired("rpc")
	_ = networkAddCmd.MarkFlagRequired("symbol")

	networkCmd.AddCommand(networkListCmd, networkAddCmd, networkRemoveCmd)
	rootCmd.AddCommand(networkCmd)
}
