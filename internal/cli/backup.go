package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/web3twenty/3twenty-wallet/internal/backup"
	"github.com/web3twenty/3twenty-wallet/internal/vault"
)

var backupForce bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore the encrypted vault",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the vault into a backup file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		b, path, err := backupService().Create(0)
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(map[string]string{
				"path":     path,
				"checksum": b.Checksum,
			})
		}

		_ = formatter.Printf("Backup written to %s\n", path)
		return formatter.Printf("Checksum: %s\n", b.Checksum)
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup files, newest first",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		names, err := backupService().List()
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			if names == nil {
				names = []string{}
			}
			return formatter.Print(names)
		}

		if len(names) == 0 {
			return formatter.Println("No backups found.")
		}
		for _, name := range names {
			_ = formatter.Println(name)
		}
		return nil
	},
}

var backupVerifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Check a backup file's integrity",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc := backupService()
		manifest, err := svc.Verify(svc.Path(args[0]))
		if err != nil {
			return err
		}

		if formatter.IsJSON() {
			return formatter.Print(manifest)
		}

		_ = formatter.Println("Backup is intact.")
		return formatter.Printf("Created: %s\n", manifest.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Replace the vault with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc := backupService()
		if err := svc.Restore(svc.Path(args[0]), backupForce); err != nil {
			return err
		}
		return formatter.Println("Vault restored. Unlock with the password the backup was sealed with.")
	},
}

// backupService builds the backup service over the configured vault.
func backupService() *backup.Service {
	return backup.NewService(filepath.Join(cfg.GetHome(), "backups"), vault.NewStore(cfg.VaultPath()))
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	backupRestoreCmd.Flags().BoolVar(&backupForce, "force", false, "overwrite an existing vault")

	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupVerifyCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}
