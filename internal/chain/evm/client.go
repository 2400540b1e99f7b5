// Package evm wraps one JSON-RPC endpoint per network and exposes the read
// and write calls the engine needs: balance and contract reads, signed
// transaction submission, and receipt waits.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/web3twenty/3twenty-wallet/internal/metrics"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

const (
	// receiptPollInterval is the pause between receipt polls while waiting
	// for a transaction to be mined.
	receiptPollInterval = 2 * time.Second

	// receiptWaitTimeout bounds a single confirmation wait.
	receiptWaitTimeout = 5 * time.Minute

	// defaultGasLimit is the gas limit for simple native transfers.
	defaultGasLimit = 21000

	// contractGasLimit is the fallback gas limit for contract calls when
	// estimation fails.
	contractGasLimit = 300000
)

// addressRegex validates 0x-prefixed 20-byte hex addresses.
var addressRegex = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// ErrRPCURLRequired indicates the RPC URL was not provided.
var ErrRPCURLRequired = &walleterr.WalletError{
	Code:     "EVM_RPC_URL_REQUIRED",
	Message:  "RPC URL is required",
	ExitCode: walleterr.ExitInput,
}

// ErrReceiptTimeout indicates the confirmation wait expired.
var ErrReceiptTimeout = &walleterr.WalletError{
	Code:     "EVM_RECEIPT_TIMEOUT",
	Message:  "timed out waiting for transaction confirmation",
	ExitCode: walleterr.ExitGeneral,
}

// ErrTxReverted indicates the transaction was mined but reverted.
var ErrTxReverted = &walleterr.WalletError{
	Code:     "EVM_TX_REVERTED",
	Message:  "transaction reverted on chain",
	ExitCode: walleterr.ExitGeneral,
}

// ClientOptions contains optional configuration for the client.
type ClientOptions struct {
	// ChainID overrides chain id detection.
	ChainID *big.Int
}

// Client provides chain operations over a single RPC endpoint.
type Client struct {
	rpcURL    string
	chainID   *big.Int
	mu        sync.Mutex
	ethClient *ethclient.Client
}

// NewClient creates a new client. The connection is established lazily on
// first use so a misconfigured endpoint fails at call time, not startup.
func NewClient(rpcURL string, opts *ClientOptions) (*Client, error) {
	if rpcURL == "" {
		return nil, ErrRPCURLRequired
	}

	c := &Client{rpcURL: rpcURL}
	if opts != nil && opts.ChainID != nil {
		c.chainID = opts.ChainID
	}

	return c, nil
}

// IsAddress reports whether the string is address-shaped.
func IsAddress(address string) bool {
	return addressRegex.MatchString(address)
}

// ValidateAddress checks if an address is valid.
func ValidateAddress(address string) error {
	if !IsAddress(address) {
		return walleterr.WithDetails(walleterr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}
	return nil
}

// ChainID returns the endpoint's chain id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.chainID), nil
}

// NativeBalance retrieves the native asset balance for an address.
func (c *Client) NativeBalance(ctx context.Context, address string) (*big.Int, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	balance, err := c.ethClient.BalanceAt(ctx, common.HexToAddress(address), nil)
	metrics.Global.RecordRPCCall(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}

	return balance, nil
}

// Call performs a read-only contract call and returns the raw result.
func (c *Client) Call(ctx context.Context, contract string, data []byte) ([]byte, error) {
	if err := ValidateAddress(contract); err != nil {
		return nil, err
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	to := common.HexToAddress(contract)
	start := time.Now()
	result, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
	metrics.Global.RecordRPCCall(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("calling contract: %w", err)
	}

	return result, nil
}

// IsContract reports whether the address has deployed code.
func (c *Client) IsContract(ctx context.Context, address string) (bool, error) {
	if err := ValidateAddress(address); err != nil {
		return false, err
	}

	if err := c.connect(ctx); err != nil {
		return false, err
	}

	start := time.Now()
	code, err := c.ethClient.CodeAt(ctx, common.HexToAddress(address), nil)
	metrics.Global.RecordRPCCall(time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("reading contract code: %w", err)
	}

	return len(code) > 0, nil
}

// SendRequest describes a transaction to build, sign, and broadcast.
type SendRequest struct {
	// PrivateKeyHex is the sender's hex-encoded private key. Zeroed use is
	// the caller's responsibility; the client never logs it.
	PrivateKeyHex string

	// To is the recipient (or contract) address.
	To string

	// Value is the native amount in the smallest unit.
	Value *big.Int

	// Data is the contract call data, nil for plain transfers.
	Data []byte

	// GasLimit overrides gas estimation when non-zero.
	GasLimit uint64
}

// Send builds, signs (EIP-155), and broadcasts a transaction, returning its
// hash without waiting for confirmation.
func (c *Client) Send(ctx context.Context, req SendRequest) (string, error) {
	if err := ValidateAddress(req.To); err != nil {
		return "", err
	}

	if err := c.connect(ctx); err != nil {
		return "", err
	}

	key, err := parsePrivateKey(req.PrivateKeyHex)
	if err != nil {
		return "", err
	}

	from := senderAddress(key)

	nonce, err := c.ethClient.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	gasPrice, err := c.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	to := common.HexToAddress(req.To)
	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		gasLimit = c.estimateGas(ctx, from, to, value, req.Data)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signer := types.NewEIP155Signer(c.chainID)
	signedTx, err := types.SignTx(tx, signer, key)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	start := time.Now()
	err = c.ethClient.SendTransaction(ctx, signedTx)
	metrics.Global.RecordRPCCall(time.Since(start), err)
	if err != nil {
		return "", walleterr.Wrap(walleterr.ErrTxRejected, "%v", err)
	}
	metrics.Global.RecordTxSent()

	return signedTx.Hash().Hex(), nil
}

// WaitMined blocks until the transaction is mined or the wait times out.
// It returns ErrTxReverted for an unsuccessful receipt. Cancellation mid-wait
// abandons the wait, not the already-broadcast transaction.
func (c *Client) WaitMined(ctx context.Context, txHash string) error {
	if err := c.connect(ctx); err != nil {
		return err
	}

	hash := common.HexToHash(txHash)
	deadline := time.Now().Add(receiptWaitTimeout)

	for {
		receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return ErrTxReverted
			}
			return nil
		}

		if time.Now().After(deadline) {
			return ErrReceiptTimeout
		}

		timer := time.NewTimer(receiptPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// estimateGas estimates gas for the call, falling back to fixed limits.
func (c *Client) estimateGas(ctx context.Context, from, to common.Address, value *big.Int, data []byte) uint64 {
	gas, err := c.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err == nil && gas > 0 {
		return gas
	}
	if len(data) == 0 {
		return defaultGasLimit
	}
	return contractGasLimit
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ethClient != nil {
		c.ethClient.Close()
		c.ethClient = nil
	}
}

// connect establishes the RPC connection if not already connected.
// Thread-safe and retryable after transient failures.
func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ethClient != nil {
		return nil
	}

	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return walleterr.Wrap(walleterr.ErrNetworkError, "dialing %s", c.rpcURL)
	}

	if c.chainID == nil {
		chainID, err := client.ChainID(ctx)
		if err != nil {
			client.Close()
			return walleterr.Wrap(walleterr.ErrNetworkError, "getting chain id")
		}
		c.chainID = chainID
	}

	c.ethClient = client
	return nil
}
