package cli

import (
	"github.com/spf13/cobra"

	"github.com/web3twenty/3twenty-wallet/internal/account"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage wallet accounts",
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		accounts := session.Accounts()
		if formatter.IsJSON() {
			return formatter.Print(accounts)
		}

		return printAccounts(accounts)
	},
}

var accountAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Generate a new account",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		acct, err := session.AddAccount(args[0], 12)
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(acct)
		}
		return formatter.Printf("Added %s (%s)\n", acct.Name, acct.Address)
	},
}

var accountImportCmd = &cobra.Command{
	Use:   "import NAME",
	Short: "Import an account from a recovery phrase or private key",
	Long: `Imports an account. The secret is prompted, never passed as an
argument, so it stays out of shell history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		secret, err := promptLine("Recovery phrase or private key: ")
		if err != nil {
			return err
		}

		var acct *account.Account
		if looksLikeKey(secret) {
			acct, err = session.ImportKey(args[0], secret)
		} else {
			acct, err = session.ImportPhrase(args[0], secret)
		}
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(acct)
		}
		return formatter.Printf("Imported %s (%s)\n", acct.Name, acct.Address)
	},
}

var accountRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}

		ok, err := confirm("Remove the account? Funds stay on chain but the key is erased from this vault.")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := session.RemoveAccount(args[0]); err != nil {
			return err
		}
		return formatter.Println("Removed.")
	},
}

var accountRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}
		if err := session.RenameAccount(args[0], args[1]); err != nil {
			return err
		}
		return formatter.Println("Renamed.")
	},
}

var accountUseCmd = &cobra.Command{
	Use:   "use ID",
	Short: "Select the active account",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := unlockSession(); err != nil {
			return err
		}
		if err := session.SelectAccount(args[0]); err != nil {
			return err
		}
		return formatter.Println("Selected.")
	},
}

// printAccounts renders the account table.
func printAccounts(accounts []account.Account) error {
	table := newTable("ID", "NAME", "ADDRESS")
	for _, a := range accounts {
		table.AddRow(a.ID, a.Name, a.Address)
	}
	return table.Render(formatter.Writer())
}

// looksLikeKey distinguishes a hex private key from a mnemonic phrase.
func looksLikeKey(secret string) bool {
	return len(splitWords(secret)) == 1
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	accountCmd.AddCommand(accountListCmd, accountAddCmd, accountImportCmd,
		accountRemoveCmd, accountRenameCmd, accountUseCmd)
	rootCmd.AddCommand(accountCmd)
}
