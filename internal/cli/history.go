package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// historyCmd prints the merged transaction history for the active account.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transactions for the active account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		records, err := session.History(cmd.Context(), chainID)
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(records)
		}

		if len(records) == 0 {
			return formatter.Println("No transactions found.")
		}

		table := newTable("WHEN", "DIR", "AMOUNT", "ASSET", "STATUS", "HASH")
		for _, r := range records {
			status := "ok"
			if r.Failed {
				status = "failed"
			}
			when := time.Unix(r.Timestamp, 0).UTC().Format("2006-01-02 15:04")
			table.AddRow(when, string(r.Direction), r.Amount, r.Symbol, status, r.Hash)
		}
		return table.Render(formatter.Writer())
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(historyCmd)
}
