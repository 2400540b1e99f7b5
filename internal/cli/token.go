package cli

import (
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage tracked tokens",
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked tokens on the selected network",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		tokens, err := session.Tokens(chainID)
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(tokens)
		}

		table := newTable("SYMBOL", "NAME", "DECIMALS", "ADDRESS")
		for _, t := range tokens {
			table.AddRow(t.Symbol, t.Name, itoa(t.Decimals), t.Address)
		}
		return table.Render(formatter.Writer())
	},
}

var tokenAddCmd = &cobra.Command{
	Use:   "add ADDRESS",
	Short: "Validate and track a token contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		token, err := session.AddToken(cmd.Context(), chainID, args[0])
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(token)
		}
		return formatter.Printf("Tracking %s (%s)\n", token.Symbol, token.Name)
	},
}

var tokenRemoveCmd = &cobra.Command{
	Use:   "remove ADDRESS",
	Short: "Stop tracking a custom token",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}
		if err := session.RemoveToken(chainID, args[0]); err != nil {
			return err
		}
		return formatter.Println("Removed.")
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	tokenCmd.AddCommand(tokenListCmd, tokenAddCmd, tokenRemoveCmd)
	rootCmd.AddCommand(tokenCmd)
}
