// Package registry tracks the wallet's token list per network and keeps
// last-known balances for it.
package registry

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/chain/evm"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// Options configures a Registry.
type Options struct {
	// BalanceDelay is the pause between consecutive balance fetches during
	// a refresh. Zero disables the pause.
	BalanceDelay time.Duration

	// Logger receives refresh diagnostics. Nil discards them.
	Logger LogWriter
}

// Registry is the in-memory token set with last-known balances. All methods
// are safe for concurrent use. Balance refreshes read the chain outside the
// lock so a slow endpoint never blocks token list access.
type Registry struct {
	clients ClientSource
	delay   time.Duration
	logger  LogWriter

	mu     sync.Mutex
	tokens []chain.Token
	custom map[chain.TokenKey]bool
}

// New creates a registry seeded with the given tokens. Duplicate entries
// with the same (address, chain id) identity collapse to the first one.
func New(clients ClientSource, seed []chain.Token, opts *Options) *Registry {
	r := &Registry{
		clients: clients,
		custom:  make(map[chain.TokenKey]bool),
	}
	if opts != nil {
		r.delay = opts.BalanceDelay
		r.logger = opts.Logger
	}
	if r.logger == nil {
		r.logger = nopLogger{}
	}

	seen := make(map[chain.TokenKey]bool, len(seed))
	for _, t := range seed {
		key := t.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		if t.Balance == "" {
			t.Balance = "0"
		}
		r.tokens = append(r.tokens, t)
	}

	return r
}

// Tokens returns the tracked tokens for a network, in tracking order.
func (r *Registry) Tokens(chainID int64) []chain.Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]chain.Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		if t.ChainID == chainID {
			out = append(out, t)
		}
	}
	return out
}

// CustomTokens returns the user-added tokens across all networks. These are
// the entries that belong in the persisted vault bundle; seeded defaults
// come back from configuration on every unlock.
func (r *Registry) CustomTokens() []chain.Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]chain.Token, 0, len(r.custom))
	for _, t := range r.tokens {
		if r.custom[t.Key()] {
			out = append(out, t)
		}
	}
	return out
}

// Lookup validates a candidate token contract and returns its metadata
// without tracking it. It distinguishes a malformed address, an already
// tracked token, and an address that is not a token contract.
func (r *Registry) Lookup(ctx context.Context, chainID int64, address string) (*chain.Token, error) {
	if !evm.IsAddress(address) {
		return nil, walleterr.WithDetails(walleterr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}

	candidate := chain.Token{Address: address, ChainID: chainID}
	if r.isTracked(candidate.Key()) {
		return nil, walleterr.WithDetails(walleterr.ErrTokenTracked, map[string]string{
			"address":  address,
			"chain_id": chain.FormatChainID(chainID),
		})
	}

	client, err := r.clients.ClientFor(chainID)
	if err != nil {
		return nil, err
	}

	meta, err := client.FetchTokenMetadata(ctx, address)
	if err != nil {
		return nil, err
	}

	return &chain.Token{
		Address:  address,
		Symbol:   meta.Symbol,
		Name:     meta.Name,
		Decimals: int(meta.Decimals),
		Balance:  "0",
		ChainID:  chainID,
	}, nil
}

// Add tracks a user-added token. The token must not already be tracked.
func (r *Registry) Add(token chain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := token.Key()
	for _, t := range r.tokens {
		if t.Key() == key {
			return walleterr.WithDetails(walleterr.ErrTokenTracked, map[string]string{
				"address":  token.Address,
				"chain_id": chain.FormatChainID(token.ChainID),
			})
		}
	}

	if token.Balance == "" {
		token.Balance = "0"
	}
	r.tokens = append(r.tokens, token)
	r.custom[key] = true
	return nil
}

// Remove untracks a user-added token. Native assets and seeded defaults
// stay.
func (r *Registry) Remove(chainID int64, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := (&chain.Token{Address: address, ChainID: chainID}).Key()
	for i, t := range r.tokens {
		if t.Key() != key {
			continue
		}
		if t.IsNative() || !r.custom[key] {
			return walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
				"address": address,
				"reason":  "built-in tokens cannot be removed",
			})
		}
		r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
		delete(r.custom, key)
		return nil
	}

	return walleterr.WithDetails(walleterr.ErrTokenNotFound, map[string]string{
		"address":  address,
		"chain_id": chain.FormatChainID(chainID),
	})
}

// Refresh re-fetches balances for every tracked token on a network,
// sequentially with a fixed pause between fetches. A token whose fetch
// fails keeps its last-known balance. Tokens added or removed while the
// refresh ran are respected: results merge into the current list rather
// than replacing it.
func (r *Registry) Refresh(ctx context.Context, chainID int64, holder string) ([]chain.Token, error) {
	if err := evm.ValidateAddress(holder); err != nil {
		return nil, err
	}

	client, err := r.clients.ClientFor(chainID)
	if err != nil {
		return nil, err
	}

	snapshot := r.Tokens(chainID)
	fetched := make(map[chain.TokenKey]string, len(snapshot))

	for i, t := range snapshot {
		if i > 0 && r.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.delay):
			}
		}

		balance, err := r.fetchBalance(ctx, client, &t, holder)
		if err != nil {
			r.logger.Error("balance refresh failed for %s on chain %d: %v", t.Symbol, chainID, err)
			continue
		}
		fetched[t.Key()] = balance
	}

	r.mu.Lock()
	for i := range r.tokens {
		if r.tokens[i].ChainID != chainID {
			continue
		}
		if balance, ok := fetched[r.tokens[i].Key()]; ok {
			r.tokens[i].Balance = balance
		}
	}
	r.mu.Unlock()

	r.logger.Debug("refreshed %d of %d balances on chain %d", len(fetched), len(snapshot), chainID)
	return r.Tokens(chainID), nil
}

// fetchBalance reads and formats one token balance.
func (r *Registry) fetchBalance(ctx context.Context, client ChainReader, t *chain.Token, holder string) (string, error) {
	var raw *big.Int
	var err error

	if t.IsNative() {
		raw, err = client.NativeBalance(ctx, holder)
	} else {
		raw, err = client.TokenBalance(ctx, t.Address, holder)
	}
	if err != nil {
		return "", err
	}

	return chain.FormatDecimalAmount(raw, t.Decimals), nil
}

// isTracked reports whether a token identity is in the set.
func (r *Registry) isTracked(key chain.TokenKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.Key() == key {
			return true
		}
	}
	return false
}

// nopLogger discards all messages.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
