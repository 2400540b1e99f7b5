package swap

import (
	"context"
	"math/big"

	"github.com/web3twenty/3twenty-wallet/internal/chain/evm"
)

// RouterClient is the slice of chain client behavior the orchestrator needs.
type RouterClient interface {
	// AmountsOut quotes output amounts along a swap path.
	AmountsOut(ctx context.Context, router string, amountIn *big.Int, path []string) ([]*big.Int, error)

	// WrappedNative resolves the router's wrapped native token address.
	WrappedNative(ctx context.Context, router string) (string, error)

	// Allowance retrieves the ERC-20 allowance granted to a spender.
	Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error)

	// Send signs and broadcasts a transaction, returning its hash.
	Send(ctx context.Context, req evm.SendRequest) (string, error)

	// WaitMined blocks until the transaction is mined.
	WaitMined(ctx context.Context, txHash string) error
}

// LogWriter is the logging interface the orchestrator writes to.
type LogWriter interface {
	// Debug writes a debug-level message.
	Debug(format string, args ...any)

	// Error writes an error-level message.
	Error(format string, args ...any)
}
