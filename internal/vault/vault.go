// Package vault seals and opens the wallet's secret bundle. The codec knows
// nothing about chains or sessions; it maps a serializable bundle and a
// password to an opaque blob and back.
package vault

import (
	"encoding/json"

	"github.com/web3twenty/3twenty-wallet/internal/account"
	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/walletcrypto"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// Bundle is the serialized secret payload. Built-in tokens and networks are
// reconstructible from static configuration and are excluded; only user
// additions persist.
type Bundle struct {
	Accounts       []account.Account `json:"accounts"`
	CustomTokens   []chain.Token     `json:"customTokens"`
	CustomNetworks []chain.Network   `json:"customNetworks"`
}

// Seal encrypts a bundle under the password. The ciphertext is
// non-deterministic; only the structure round-trips.
func Seal(bundle *Bundle, password string) ([]byte, error) {
	plaintext, err := json.Marshal(bundle)
	if err != nil {
		return nil, walleterr.Wrap(err, "marshaling bundle")
	}
	defer walletcrypto.ZeroBytes(plaintext)

	blob, err := walletcrypto.Encrypt(plaintext, password)
	if err != nil {
		return nil, walleterr.Wrap(err, "sealing bundle")
	}

	return blob, nil
}

// Open decrypts a bundle. Every structural or authentication failure
// collapses into the single generic ErrDecryptionFailed so the error cannot
// act as a decryption oracle.
func Open(blob []byte, password string) (*Bundle, error) {
	plaintext, err := walletcrypto.Decrypt(blob, password)
	if err != nil {
		return nil, walleterr.ErrDecryptionFailed
	}
	defer walletcrypto.ZeroBytes(plaintext)

	var bundle Bundle
	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return nil, walleterr.ErrDecryptionFailed
	}

	return &bundle, nil
}
