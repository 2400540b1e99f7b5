package wallet

import (
	"context"
	"strings"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/swap"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// QuoteSwap prices a swap of the given decimal amount between two tracked
// tokens on a network. The amount parses at the input token's precision.
func (s *Session) QuoteSwap(ctx context.Context, chainID int64, amount, tokenIn, tokenOut string) (*swap.Quote, error) {
	o, in, out, owner, err := s.swapSetup(chainID, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}

	amountIn, err := chain.ParseDecimalAmount(amount, in.Decimals, walleterr.ErrInvalidAmount)
	if err != nil {
		return nil, err
	}

	return o.Quote(ctx, swap.QuoteRequest{
		AmountIn: amountIn,
		TokenIn:  *in,
		TokenOut: *out,
		Owner:    owner,
	})
}

// NewQuoter returns a debounced quoter for a network, delivering results to
// the callback. Callers reuse one quoter per editing surface.
func (s *Session) NewQuoter(chainID int64, deliver func(*swap.Quote, error)) (*swap.Quoter, error) {
	o, err := s.orchestratorFor(chainID)
	if err != nil {
		return nil, err
	}

	debounce := time.Duration(s.cfg.Swap.QuoteDebounceMS) * time.Millisecond
	return swap.NewQuoter(o, debounce, deliver), nil
}

// ApproveSwap grants the router allowance for the held quote's input token,
// signing with the active account.
func (s *Session) ApproveSwap(ctx context.Context, chainID int64) (string, error) {
	o, err := s.orchestratorFor(chainID)
	if err != nil {
		return "", err
	}

	key, _, err := s.activeKey()
	if err != nil {
		return "", err
	}

	return o.Approve(ctx, key)
}

// ExecuteSwap broadcasts the held quote's swap, signing with the active
// account, which also receives the output.
func (s *Session) ExecuteSwap(ctx context.Context, chainID int64) (string, error) {
	o, err := s.orchestratorFor(chainID)
	if err != nil {
		return "", err
	}

	key, address, err := s.activeKey()
	if err != nil {
		return "", err
	}

	return o.Execute(ctx, key, address)
}

// SwapStatus reports the swap phase for a network. Cause is set only for
// the failed phase.
type SwapStatus struct {
	State swap.State
	Cause error
}

// SwapState returns the swap phase for a network.
func (s *Session) SwapState(chainID int64) (*SwapStatus, error) {
	o, err := s.orchestratorFor(chainID)
	if err != nil {
		return nil, err
	}

	state, cause := o.State()
	return &SwapStatus{State: state, Cause: cause}, nil
}

// ResetSwap discards any held quote for a network.
func (s *Session) ResetSwap(chainID int64) error {
	o, err := s.orchestratorFor(chainID)
	if err != nil {
		return err
	}
	o.Reset()
	return nil
}

// swapSetup resolves the orchestrator, both tokens, and the owner address.
func (s *Session) swapSetup(chainID int64, tokenIn, tokenOut string) (*swap.Orchestrator, *chain.Token, *chain.Token, string, error) {
	o, err := s.orchestratorFor(chainID)
	if err != nil {
		return nil, nil, nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, nil, nil, "", err
	}

	in, err := s.tokenLocked(chainID, tokenIn)
	if err != nil {
		return nil, nil, nil, "", err
	}
	out, err := s.tokenLocked(chainID, tokenOut)
	if err != nil {
		return nil, nil, nil, "", err
	}

	_, address, err := s.activeKeyLocked()
	if err != nil {
		return nil, nil, nil, "", err
	}

	return o, in, out, address, nil
}

// orchestratorFor returns the per-network orchestrator, building it on
// first use.
func (s *Session) orchestratorFor(chainID int64) (*swap.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	if o, ok := s.orchestrators[chainID]; ok {
		return o, nil
	}

	network := s.networks.ByChainID(chainID)
	if network == nil {
		return nil, walleterr.ErrNetworkNotFound
	}

	client, err := s.clients.ClientFor(chainID)
	if err != nil {
		return nil, err
	}

	o := swap.NewOrchestrator(client, *network, &swap.Options{
		Deadline: time.Duration(s.cfg.Swap.DeadlineSeconds) * time.Second,
		Logger:   s.logger,
	})
	s.orchestrators[chainID] = o
	return o, nil
}

// tokenLocked finds a tracked token by address on a network.
func (s *Session) tokenLocked(chainID int64, address string) (*chain.Token, error) {
	for _, t := range s.registry.Tokens(chainID) {
		if strings.EqualFold(t.Address, address) {
			return &t, nil
		}
	}
	return nil, walleterr.WithDetails(walleterr.ErrTokenNotFound, map[string]string{
		"address":  address,
		"chain_id": chain.FormatChainID(chainID),
	})
}

// activeKey returns the active account's signing key and address.
func (s *Session) activeKey() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return "", "", err
	}
	return s.activeKeyLocked()
}
