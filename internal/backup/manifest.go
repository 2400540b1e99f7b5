// Package backup copies the sealed vault blob into timestamped backup files
// and restores from them. The blob stays encrypted end to end; no password
// is needed to create or verify a backup.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBackupNotFound indicates the backup file was not found.
	ErrBackupNotFound = errors.New("backup file not found")

	// ErrBackupCorrupted indicates the backup checksum failed.
	ErrBackupCorrupted = errors.New("backup corrupted - checksum mismatch")

	// ErrInvalidFormat indicates the backup format is invalid.
	ErrInvalidFormat = errors.New("invalid backup format")

	// ErrVaultPresent indicates a restore would overwrite an existing vault.
	ErrVaultPresent = errors.New("a vault already exists - pass --force to overwrite")
)

// Version is the current backup format version.
const Version = 1

// Backup wraps one sealed vault blob with integrity metadata.
type Backup struct {
	// Version is the backup format version.
	Version int `json:"version"`

	// Manifest contains backup metadata.
	Manifest Manifest `json:"manifest"`

	// SealedVault is the age-encrypted vault blob, byte for byte.
	SealedVault []byte `json:"sealed_vault"`

	// Checksum is the SHA256 hash of SealedVault.
	Checksum string `json:"checksum"`
}

// Manifest describes a backup without revealing vault contents.
type Manifest struct {
	// CreatedAt is when the backup was created.
	CreatedAt time.Time `json:"created_at"`

	// EncryptionMethod names the cipher sealing the vault.
	EncryptionMethod string `json:"encryption_method"`

	// Accounts is the account count at backup time, when known. Zero means
	// the count was not recorded.
	Accounts int `json:"accounts,omitempty"`
}

// New wraps a sealed vault blob into a backup.
func New(sealed []byte, accounts int) *Backup {
	return &Backup{
		Version: Version,
		Manifest: Manifest{
			CreatedAt:        time.Now().UTC(),
			EncryptionMethod: "age",
			Accounts:         accounts,
		},
		SealedVault: sealed,
		Checksum:    checksum(sealed),
	}
}

// Validate checks version, presence of data, and the checksum.
func (b *Backup) Validate() error {
	if b.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, b.Version)
	}
	if len(b.SealedVault) == 0 {
		return fmt.Errorf("%w: no vault data", ErrInvalidFormat)
	}
	if checksum(b.SealedVault) != b.Checksum {
		return ErrBackupCorrupted
	}
	return nil
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
