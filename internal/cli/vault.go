package cli

import (
	"github.com/spf13/cobra"

	"github.com/web3twenty/3twenty-wallet/internal/walletcrypto"
)

var initWords int

// initCmd creates a new vault with one generated account.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new encrypted vault",
	Long: `Creates the vault file with a freshly generated account.

The recovery phrase is shown exactly once. Write it down and store it
offline; anyone holding it controls the funds.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer walletcrypto.ZeroBytes(password)

		acct, err := session.Create(string(password), "main", initWords)
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(map[string]string{
				"address":  acct.Address,
				"mnemonic": acct.Mnemonic,
			})
		}

		_ = formatter.Println("Vault created.")
		_ = formatter.Printf("Address:  %s\n\n", acct.Address)
		_ = formatter.Println("Recovery phrase (shown once, store it offline):")
		_ = formatter.Printf("  %s\n", acct.Mnemonic)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	initCmd.Flags().IntVar(&initWords, "words", 12, "mnemonic length: 12 or 24")
	rootCmd.AddCommand(initCmd)
}
