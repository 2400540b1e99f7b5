package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/fileutil"
	"github.com/web3twenty/3twenty-wallet/internal/vault"
)

const (
	// Extension is the file extension for backup files.
	Extension = ".3tbak"

	backupDirPermissions  = 0o750
	backupFilePermissions = 0o600
)

// Service creates, inspects, and restores vault backups under one directory.
type Service struct {
	dir   string
	store *vault.Store
	now   func() time.Time
}

// NewService creates a backup service over the given directory and vault
// store.
func NewService(dir string, store *vault.Store) *Service {
	return &Service{dir: dir, store: store, now: time.Now}
}

// Create snapshots the current vault blob into a new backup file and returns
// the manifest and the path written. The accounts count is recorded in the
// manifest when the caller knows it; pass zero otherwise.
func (s *Service) Create(accounts int) (*Backup, string, error) {
	sealed, err := s.store.Load()
	if err != nil {
		return nil, "", err
	}

	b := New(sealed, accounts)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("serializing backup: %w", err)
	}

	name := "vault-" + s.now().UTC().Format("2006-01-02-150405") + Extension
	path := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, backupDirPermissions); err != nil {
		return nil, "", fmt.Errorf("creating backup directory: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, backupFilePermissions); err != nil {
		return nil, "", fmt.Errorf("writing backup file: %w", err)
	}

	return b, path, nil
}

// Verify checks a backup file's integrity without touching the vault.
func (s *Service) Verify(path string) (*Manifest, error) {
	b, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b.Manifest, nil
}

// Restore replaces the vault blob with the one in the backup file. An
// existing vault is only overwritten when force is set.
func (s *Service) Restore(path string, force bool) error {
	b, err := s.read(path)
	if err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}

	exists, err := s.store.Exists()
	if err != nil {
		return err
	}
	if exists && !force {
		return ErrVaultPresent
	}

	return s.store.Save(b.SealedVault)
}

// List returns backup file names in the backup directory, newest first. A
// missing directory yields an empty list.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		names = append(names, entry.Name())
	}

	// Timestamped names sort chronologically; reverse for newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Path resolves a backup file name against the backup directory. Absolute
// paths pass through unchanged.
func (s *Service) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *Service) read(path string) (*Backup, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- backup path comes from user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, fmt.Errorf("reading backup file: %w", err)
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return &b, nil
}
