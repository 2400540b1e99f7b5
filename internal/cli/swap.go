package cli

import (
	"github.com/spf13/cobra"
)

var swapYes bool

// swapCmd quotes and executes a swap in one interactive flow.
var swapCmd = &cobra.Command{
	Use:   "swap AMOUNT TOKEN_IN TOKEN_OUT",
	Short: "Swap tokens through the network's DEX router",
	Long: `Quotes a swap and, after confirmation, executes it. Use the
address "native" for the network's native asset.

The executed swap tolerates at most 2% slippage below the quoted output;
worse fills revert on chain.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		quote, err := session.QuoteSwap(cmd.Context(), chainID, args[0], args[1], args[2])
		if err != nil {
			return err
		}

		if quote.Empty() {
			return formatter.Println("No route for this pair.")
		}

		_ = formatter.Printf("Quote: %s %s -> %s %s (minimum %s)\n",
			formatAmount(quote.AmountIn, quote.TokenIn.Decimals), quote.TokenIn.Symbol,
			formatAmount(quote.AmountOut, quote.TokenOut.Decimals), quote.TokenOut.Symbol,
			formatAmount(quote.MinOut, quote.TokenOut.Decimals))

		if quote.NeedsApproval {
			if !swapYes {
				ok, err := confirm("Grant the router allowance to move " + quote.TokenIn.Symbol + "?")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			txHash, err := session.ApproveSwap(cmd.Context(), chainID)
			if err != nil {
				return err
			}
			_ = formatter.Printf("Approved: %s\n", txHash)
		}

		if !swapYes {
			ok, err := confirm("Execute the swap?")
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}

		txHash, err := session.ExecuteSwap(cmd.Context(), chainID)
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(map[string]string{"tx_hash": txHash})
		}
		return formatter.Printf("Swap confirmed: %s\n", txHash)
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	swapCmd.Flags().BoolVarP(&swapYes, "yes", "y", false, "skip confirmation prompts")
	rootCmd.AddCommand(swapCmd)
}
