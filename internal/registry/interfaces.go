package registry

import (
	"context"
	"math/big"

	"github.com/web3twenty/3twenty-wallet/internal/chain/evm"
)

// ChainReader is the slice of chain client behavior the registry needs.
type ChainReader interface {
	// NativeBalance retrieves the native asset balance for an address.
	NativeBalance(ctx context.Context, address string) (*big.Int, error)

	// TokenBalance retrieves the ERC-20 balance of a holder.
	TokenBalance(ctx context.Context, token, holder string) (*big.Int, error)

	// FetchTokenMetadata reads name, symbol, and decimals from a token
	// contract.
	FetchTokenMetadata(ctx context.Context, token string) (*evm.TokenMetadata, error)
}

// ClientSource resolves a chain reader for a network.
type ClientSource interface {
	// ClientFor returns the client for the given chain id.
	ClientFor(chainID int64) (ChainReader, error)
}

// LogWriter is the logging interface the registry writes to.
type LogWriter interface {
	// Debug writes a debug-level message.
	Debug(format string, args ...any)

	// Error writes an error-level message.
	Error(format string, args ...any)
}
