package evm

import (
	"context"
	"math/big"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// ERC-20 function selectors (first 4 bytes of the keccak-256 signature hash).
var (
	selectorBalanceOf = []byte{0x70, 0xa0, 0x82, 0x31} // balanceOf(address)
	selectorDecimals  = []byte{0x31, 0x3c, 0xe5, 0x67} // decimals()
	selectorSymbol    = []byte{0x95, 0xd8, 0x9b, 0x41} // symbol()
	selectorName      = []byte{0x06, 0xfd, 0xde, 0x03} // name()
	selectorAllowance = []byte{0xdd, 0x62, 0xed, 0x3e} // allowance(address,address)
	selectorApprove   = []byte{0x09, 0x5e, 0xa7, 0xb3} // approve(address,uint256)
	selectorTransfer  = []byte{0xa9, 0x05, 0x9c, 0xbb} // transfer(address,uint256)
)

// MaxApproval is the unlimited ERC-20 allowance (2^256 - 1).
var MaxApproval = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// TokenMetadata describes an ERC-20 contract's self-reported identity.
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// TokenBalance retrieves the ERC-20 balance of a holder.
func (c *Client) TokenBalance(ctx context.Context, token, holder string) (*big.Int, error) {
	if err := ValidateAddress(holder); err != nil {
		return nil, err
	}

	data := append([]byte{}, selectorBalanceOf...)
	data = append(data, packAddress(holder)...)

	result, err := c.Call(ctx, token, data)
	if err != nil {
		return nil, err
	}

	return unpackUint(result, 0), nil
}

// FetchTokenMetadata reads name, symbol, and decimals from a token contract.
// A contract that answers none of the three is treated as not a token.
func (c *Client) FetchTokenMetadata(ctx context.Context, token string) (*TokenMetadata, error) {
	if err := ValidateAddress(token); err != nil {
		return nil, err
	}

	isContract, err := c.IsContract(ctx, token)
	if err != nil {
		return nil, err
	}
	if !isContract {
		return nil, walleterr.WithDetails(walleterr.ErrInvalidContract, map[string]string{
			"address": token,
		})
	}

	meta := &TokenMetadata{}
	answered := false

	if result, err := c.Call(ctx, token, selectorSymbol); err == nil && len(result) > 0 {
		meta.Symbol = unpackString(result)
		answered = answered || meta.Symbol != ""
	}

	if result, err := c.Call(ctx, token, selectorName); err == nil && len(result) > 0 {
		meta.Name = unpackString(result)
		answered = answered || meta.Name != ""
	}

	if result, err := c.Call(ctx, token, selectorDecimals); err == nil && len(result) > 0 {
		meta.Decimals = uint8(unpackUint(result, 0).Uint64())
		answered = true
	}

	if !answered {
		return nil, walleterr.WithDetails(walleterr.ErrInvalidContract, map[string]string{
			"address": token,
		})
	}

	return meta, nil
}

// Allowance retrieves the amount the spender may move on the owner's behalf.
func (c *Client) Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error) {
	if err := ValidateAddress(owner); err != nil {
		return nil, err
	}
	if err := ValidateAddress(spender); err != nil {
		return nil, err
	}

	data := append([]byte{}, selectorAllowance...)
	data = append(data, packAddress(owner)...)
	data = append(data, packAddress(spender)...)

	result, err := c.Call(ctx, token, data)
	if err != nil {
		return nil, err
	}

	return unpackUint(result, 0), nil
}

// ApproveCalldata builds approve(spender, amount) call data.
func ApproveCalldata(spender string, amount *big.Int) []byte {
	data := append([]byte{}, selectorApprove...)
	data = append(data, packAddress(spender)...)
	data = append(data, packUint(amount)...)
	return data
}

// TransferCalldata builds transfer(to, amount) call data.
func TransferCalldata(to string, amount *big.Int) []byte {
	data := append([]byte{}, selectorTransfer...)
	data = append(data, packAddress(to)...)
	data = append(data, packUint(amount)...)
	return data
}
