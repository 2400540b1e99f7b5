package cli

import (
	"github.com/spf13/cobra"
)

// balanceCmd refreshes and prints the token balances for the active account.
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show token balances for the active account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		tokens, err := session.RefreshBalances(cmd.Context(), chainID)
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(tokens)
		}

		table := newTable("SYMBOL", "BALANCE", "ADDRESS")
		for _, t := range tokens {
			table.AddRow(t.Symbol, t.Balance, t.Address)
		}
		return table.Render(formatter.Writer())
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(balanceCmd)
}
