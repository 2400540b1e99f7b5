package account

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// Account is one controlled key identity. PrivateKey and Mnemonic leave
// memory only inside a sealed vault bundle; they are never logged.
type Account struct {
	// ID is an opaque identifier.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Address is the EIP-55 checksummed address, always the deterministic
	// derivation of PrivateKey.
	Address string `json:"address"`

	// PrivateKey is the hex-encoded secp256k1 private key.
	PrivateKey string `json:"private_key"`

	// Mnemonic is the recovery phrase, present only if the account was
	// created or imported via phrase.
	Mnemonic string `json:"mnemonic,omitempty"`
}

// privateKeyRegex validates a raw hex private key (optional 0x prefix).
var privateKeyRegex = regexp.MustCompile("^(0x)?[0-9a-fA-F]{64}$")

// Generate produces a fresh account with a 12-word recovery phrase.
// Uses crypto/rand via the BIP39 entropy source.
func Generate(name string) (*Account, error) {
	return GenerateWithWords(name, 12)
}

// GenerateWithWords produces a fresh account with a 12 or 24 word phrase.
func GenerateWithWords(name string, words int) (*Account, error) {
	mnemonic, err := GenerateMnemonic(words)
	if err != nil {
		return nil, err
	}
	return fromMnemonic(name, mnemonic)
}

// ImportFromPhrase re-derives the account a phrase would have generated.
// Importing the same phrase twice yields the same address both times.
func ImportFromPhrase(name, phrase string) (*Account, error) {
	if err := ValidateMnemonic(phrase); err != nil {
		return nil, err
	}
	return fromMnemonic(name, NormalizeMnemonicInput(phrase))
}

// ImportFromKey derives an account from a raw hex private key.
func ImportFromKey(name, hexKey string) (*Account, error) {
	hexKey = strings.TrimSpace(hexKey)
	if !privateKeyRegex.MatchString(hexKey) {
		return nil, walleterr.ErrInvalidPrivateKey
	}
	hexKey = strings.TrimPrefix(hexKey, "0x")

	address, err := DeriveAddress(hexKey)
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:         newID(),
		Name:       name,
		Address:    address,
		PrivateKey: hexKey,
	}, nil
}

// DeriveAddress computes the EIP-55 checksummed address for a hex private
// key. Pure function: no side effects.
func DeriveAddress(hexKey string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return "", walleterr.Wrap(walleterr.ErrInvalidPrivateKey, "parsing private key")
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

// fromMnemonic derives the account key at m/44'/60'/0'/0/0 from a phrase.
func fromMnemonic(name, mnemonic string) (*Account, error) {
	seed, err := MnemonicToSeed(mnemonic)
	if err != nil {
		return nil, err
	}
	defer zero(seed)

	key, err := deriveBIP44Key(seed)
	if err != nil {
		return nil, err
	}

	privHex := hex.EncodeToString(key)
	zero(key)

	address, err := DeriveAddress(privHex)
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:         newID(),
		Name:       name,
		Address:    address,
		PrivateKey: privHex,
		Mnemonic:   mnemonic,
	}, nil
}

// deriveBIP44Key derives the private key at m/44'/60'/0'/0/0.
// Path: m / purpose' / coin_type' / account' / change / address_index,
// with coin type 60 (Ethereum-style chains).
func deriveBIP44Key(seed []byte) ([]byte, error) {
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, walleterr.Wrap(err, "creating master key")
	}

	path := []uint32{
		bip32.FirstHardenedChild + 44, // purpose'
		bip32.FirstHardenedChild + 60, // coin_type'
		bip32.FirstHardenedChild,      // account'
		0,                             // change
		0,                             // address_index
	}

	key := masterKey
	for _, index := range path {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, walleterr.Wrap(err, "deriving child key")
		}
	}

	priv := make([]byte, len(key.Key))
	copy(priv, key.Key)
	return priv, nil
}

// newID returns an opaque random account identifier.
func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

func zero(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
