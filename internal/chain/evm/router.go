package evm

import (
	"context"
	"math/big"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// Uniswap V2 style router selectors.
var (
	selectorGetAmountsOut    = []byte{0xd0, 0x6c, 0xa6, 0x1f} // getAmountsOut(uint256,address[])
	selectorWETH             = []byte{0xad, 0x5c, 0x46, 0x48} // WETH()
	selectorSwapTokensTokens = []byte{0x38, 0xed, 0x17, 0x39} // swapExactTokensForTokens(uint256,uint256,address[],address,uint256)
	selectorSwapNativeTokens = []byte{0x7f, 0xf3, 0x6a, 0xb5} // swapExactETHForTokens(uint256,address[],address,uint256)
	selectorSwapTokensNative = []byte{0x18, 0xcb, 0xaf, 0xe5} // swapExactTokensForETH(uint256,uint256,address[],address,uint256)
)

// WrappedNative asks the router for its wrapped native token address.
func (c *Client) WrappedNative(ctx context.Context, router string) (string, error) {
	result, err := c.Call(ctx, router, append([]byte{}, selectorWETH...))
	if err != nil {
		return "", err
	}

	address := unpackAddress(result, 0)
	if address == "" {
		return "", walleterr.WithDetails(walleterr.ErrInvalidContract, map[string]string{
			"address": router,
		})
	}

	return address, nil
}

// AmountsOut quotes the output amounts along a swap path. The last element
// is the expected output for the final token in the path.
func (c *Client) AmountsOut(ctx context.Context, router string, amountIn *big.Int, path []string) ([]*big.Int, error) {
	for _, hop := range path {
		if err := ValidateAddress(hop); err != nil {
			return nil, err
		}
	}

	data := append([]byte{}, selectorGetAmountsOut...)
	data = append(data, packUint(amountIn)...)
	// Dynamic array: head holds the tail offset, tail follows the head.
	data = append(data, packUint(big.NewInt(2*wordSize))...)
	data = append(data, packAddressArray(path)...)

	result, err := c.Call(ctx, router, data)
	if err != nil {
		return nil, err
	}

	amounts := unpackUintArray(result)
	if len(amounts) != len(path) {
		return nil, walleterr.Wrap(walleterr.ErrNetworkError, "malformed getAmountsOut response")
	}

	return amounts, nil
}

// SwapTokensForTokensCalldata builds swapExactTokensForTokens call data.
func SwapTokensForTokensCalldata(amountIn, amountOutMin *big.Int, path []string, to string, deadline *big.Int) []byte {
	data := append([]byte{}, selectorSwapTokensTokens...)
	data = append(data, packUint(amountIn)...)
	data = append(data, packUint(amountOutMin)...)
	data = append(data, packUint(big.NewInt(5*wordSize))...)
	data = append(data, packAddress(to)...)
	data = append(data, packUint(deadline)...)
	data = append(data, packAddressArray(path)...)
	return data
}

// SwapNativeForTokensCalldata builds swapExactETHForTokens call data. The
// native amount rides in the transaction value.
func SwapNativeForTokensCalldata(amountOutMin *big.Int, path []string, to string, deadline *big.Int) []byte {
	data := append([]byte{}, selectorSwapNativeTokens...)
	data = append(data, packUint(amountOutMin)...)
	data = append(data, packUint(big.NewInt(4*wordSize))...)
	data = append(data, packAddress(to)...)
	data = append(data, packUint(deadline)...)
	data = append(data, packAddressArray(path)...)
	return data
}

// SwapTokensForNativeCalldata builds swapExactTokensForETH call data.
func SwapTokensForNativeCalldata(amountIn, amountOutMin *big.Int, path []string, to string, deadline *big.Int) []byte {
	data := append([]byte{}, selectorSwapTokensNative...)
	data = append(data, packUint(amountIn)...)
	data = append(data, packUint(amountOutMin)...)
	data = append(data, packUint(big.NewInt(5*wordSize))...)
	data = append(data, packAddress(to)...)
	data = append(data, packUint(deadline)...)
	data = append(data, packAddressArray(path)...)
	return data
}
