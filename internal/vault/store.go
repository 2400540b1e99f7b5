package vault

import (
	"encoding/base64"
	"os"

	"github.com/web3twenty/3twenty-wallet/internal/fileutil"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

const (
	// vaultFilePermissions is the permission mode for the vault blob.
	vaultFilePermissions = 0o600

	// vaultDirPermissions is the permission mode for the wallet home.
	vaultDirPermissions = 0o750
)

// Store persists the sealed vault as one opaque blob under one well-known
// path, replaced wholesale on every save.
type Store struct {
	path string
}

// NewStore creates a store for the given vault file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the vault file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a vault blob is present.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the sealed blob, replacing any previous vault. The atomic
// write keeps a crash mid-save from destroying the old vault.
func (s *Store) Save(blob []byte) error {
	if err := fileutil.EnsureDir(s.path, vaultDirPermissions); err != nil {
		return walleterr.Wrap(err, "creating vault directory")
	}

	encoded := base64.StdEncoding.EncodeToString(blob)
	if err := fileutil.WriteAtomic(s.path, []byte(encoded), vaultFilePermissions); err != nil {
		return walleterr.Wrap(err, "writing vault file")
	}

	return nil
}

// Load reads the sealed blob.
func (s *Store) Load() ([]byte, error) {
	// #nosec G304 -- vault path comes from validated config
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, walleterr.ErrVaultNotFound
	}
	if err != nil {
		return nil, walleterr.Wrap(err, "reading vault file")
	}

	blob, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		// Corrupted storage reads the same as a bad password to the caller.
		return nil, walleterr.ErrDecryptionFailed
	}

	return blob, nil
}

// Delete removes the vault blob.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return walleterr.ErrVaultNotFound
		}
		return walleterr.Wrap(err, "removing vault file")
	}
	return nil
}
