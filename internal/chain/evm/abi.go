package evm

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// wordSize is the width of one ABI slot.
const wordSize = 32

// packAddress left-pads an address to a 32-byte word.
func packAddress(address string) []byte {
	return common.LeftPadBytes(common.HexToAddress(address).Bytes(), wordSize)
}

// packUint left-pads a big integer to a 32-byte word.
func packUint(value *big.Int) []byte {
	if value == nil {
		value = big.NewInt(0)
	}
	return common.LeftPadBytes(value.Bytes(), wordSize)
}

// packAddressArray encodes a dynamic address array tail: length word
// followed by one word per element.
func packAddressArray(addresses []string) []byte {
	out := packUint(big.NewInt(int64(len(addresses))))
	for _, a := range addresses {
		out = append(out, packAddress(a)...)
	}
	return out
}

// unpackUint reads the 32-byte word at the given offset as an unsigned
// integer. Returns zero when the data is too short.
func unpackUint(data []byte, offset int) *big.Int {
	if len(data) < offset+wordSize {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(data[offset : offset+wordSize])
}

// unpackUintArray decodes a uint256[] return value.
func unpackUintArray(data []byte) []*big.Int {
	if len(data) < 2*wordSize {
		return nil
	}

	offset := int(unpackUint(data, 0).Int64())
	if offset < 0 || len(data) < offset+wordSize {
		return nil
	}

	length := int(unpackUint(data, offset).Int64())
	if length < 0 {
		return nil
	}

	values := make([]*big.Int, 0, length)
	for i := 0; i < length; i++ {
		pos := offset + wordSize + i*wordSize
		if len(data) < pos+wordSize {
			break
		}
		values = append(values, unpackUint(data, pos))
	}

	return values
}

// unpackString decodes a string return value. Handles both the standard
// dynamic encoding and the legacy bytes32 form some tokens use.
func unpackString(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if len(data) == wordSize {
		// Legacy bytes32: right-padded with zero bytes.
		return strings.TrimRight(string(data), "\x00")
	}

	if len(data) < 2*wordSize {
		return ""
	}

	offset := int(unpackUint(data, 0).Int64())
	if offset < 0 || len(data) < offset+wordSize {
		return ""
	}

	length := int(unpackUint(data, offset).Int64())
	start := offset + wordSize
	if length < 0 || len(data) < start+length {
		return ""
	}

	return string(data[start : start+length])
}

// unpackAddress reads the 32-byte word at the given offset as an address.
func unpackAddress(data []byte, offset int) string {
	if len(data) < offset+wordSize {
		return ""
	}
	return common.BytesToAddress(data[offset+12 : offset+wordSize]).Hex()
}

// parsePrivateKey decodes a hex private key, tolerating a 0x prefix.
func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, walleterr.ErrInvalidPrivateKey
	}
	return key, nil
}

// senderAddress derives the address controlled by the key.
func senderAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
