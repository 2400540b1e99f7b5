// Package swap orchestrates token swaps against a Uniswap V2 style router:
// quoting, allowance handling, and execution behind a small state machine.
package swap

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/chain/evm"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// Slippage tolerance applied to every quote: the swap reverts on chain if
// the output falls below 98% of the quoted amount.
const (
	slippageNumerator   = 98
	slippageDenominator = 100
)

// DefaultDeadline is how long a broadcast swap stays valid on chain.
const DefaultDeadline = 600 * time.Second

// QuoteRequest describes one quote.
type QuoteRequest struct {
	// AmountIn is the input amount in the token's smallest unit.
	AmountIn *big.Int

	// TokenIn is the asset being sold.
	TokenIn chain.Token

	// TokenOut is the asset being bought.
	TokenOut chain.Token

	// Owner is the address funding the swap. Required for allowance
	// checks; a quote without it assumes no approval is needed.
	Owner string
}

// Quote is one priced swap, valid until a newer quote supersedes it.
type Quote struct {
	// AmountIn is the input amount.
	AmountIn *big.Int

	// AmountOut is the quoted output amount.
	AmountOut *big.Int

	// MinOut is the minimum acceptable output after slippage.
	MinOut *big.Int

	// Path is the resolved swap path with native sentinels substituted by
	// the wrapped native token.
	Path []string

	// TokenIn and TokenOut are the quoted pair.
	TokenIn  chain.Token
	TokenOut chain.Token

	// NeedsApproval reports whether the router lacks allowance to move
	// the input token.
	NeedsApproval bool

	generation uint64
}

// Empty reports whether the quote carries no amounts, as produced for a
// zero input or a network without a router.
func (q *Quote) Empty() bool {
	return q.AmountOut == nil || q.AmountOut.Sign() == 0
}

// Options configures an Orchestrator.
type Options struct {
	// Deadline is how long a broadcast swap stays valid on chain.
	// Zero means DefaultDeadline.
	Deadline time.Duration

	// Logger receives swap diagnostics. Nil discards them.
	Logger LogWriter
}

// Orchestrator drives one swap at a time through the quote, approve, and
// execute phases. Safe for concurrent use.
type Orchestrator struct {
	client   RouterClient
	network  chain.Network
	deadline time.Duration
	logger   LogWriter

	mu         sync.Mutex
	state      State
	quote      *Quote
	lastErr    error
	generation uint64
}

// NewOrchestrator creates an orchestrator for one network.
func NewOrchestrator(client RouterClient, network chain.Network, opts *Options) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		network:  network,
		deadline: DefaultDeadline,
		state:    StateIdle,
	}
	if opts != nil {
		if opts.Deadline > 0 {
			o.deadline = opts.Deadline
		}
		o.logger = opts.Logger
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}
	return o
}

// State returns the current phase and, for StateFailed, the cause.
func (o *Orchestrator) State() (State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state, o.lastErr
}

// CurrentQuote returns the held quote, or nil outside StateQuoteReady.
func (o *Orchestrator) CurrentQuote() *Quote {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateQuoteReady {
		return nil
	}
	return o.quote
}

// Reset returns the orchestrator to StateIdle, discarding any quote and
// invalidating in-flight quote requests.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.state = StateIdle
	o.quote = nil
	o.lastErr = nil
}

// Quote fetches a price for the pair immediately. A zero amount or a
// network without a router yields an empty quote and leaves the state idle.
func (o *Orchestrator) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	gen := o.beginQuote()
	quote, err := o.fetchQuote(ctx, req, gen)
	o.finishQuote(gen, quote, err)
	return quote, err
}

// beginQuote starts a new quote generation, superseding older requests.
func (o *Orchestrator) beginQuote() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	if o.state == StateIdle || o.state == StateQuoteReady || o.state == StateQuoting {
		o.state = StateQuoting
	}
	return o.generation
}

// finishQuote installs the quote if its generation is still current.
// Stale results are dropped so only the latest request wins.
func (o *Orchestrator) finishQuote(gen uint64, quote *Quote, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		o.logger.Debug("dropping superseded quote (generation %d, current %d)", gen, o.generation)
		return
	}

	if err != nil {
		o.state = StateFailed
		o.lastErr = err
		return
	}

	if quote.Empty() {
		o.state = StateIdle
		o.quote = nil
		return
	}

	o.quote = quote
	o.state = StateQuoteReady
}

// isCurrent reports whether a generation is still the latest.
func (o *Orchestrator) isCurrent(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen == o.generation
}

// fetchQuote prices the pair on the router.
func (o *Orchestrator) fetchQuote(ctx context.Context, req QuoteRequest, gen uint64) (*Quote, error) {
	empty := &Quote{
		AmountIn:   req.AmountIn,
		AmountOut:  big.NewInt(0),
		MinOut:     big.NewInt(0),
		TokenIn:    req.TokenIn,
		TokenOut:   req.TokenOut,
		generation: gen,
	}

	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		return empty, nil
	}
	if !o.network.HasRouter() {
		return empty, nil
	}

	path, err := o.resolvePath(ctx, req.TokenIn, req.TokenOut)
	if err != nil {
		return nil, err
	}

	amounts, err := o.client.AmountsOut(ctx, o.network.Router, req.AmountIn, path)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrSwapFailed, "quoting %s -> %s", req.TokenIn.Symbol, req.TokenOut.Symbol)
	}

	out := amounts[len(amounts)-1]
	minOut := new(big.Int).Mul(out, big.NewInt(slippageNumerator))
	minOut.Div(minOut, big.NewInt(slippageDenominator))

	quote := &Quote{
		AmountIn:   new(big.Int).Set(req.AmountIn),
		AmountOut:  out,
		MinOut:     minOut,
		Path:       path,
		TokenIn:    req.TokenIn,
		TokenOut:   req.TokenOut,
		generation: gen,
	}

	if !req.TokenIn.IsNative() && req.Owner != "" {
		allowance, err := o.client.Allowance(ctx, req.TokenIn.Address, req.Owner, o.network.Router)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.ErrSwapFailed, "checking allowance for %s", req.TokenIn.Symbol)
		}
		quote.NeedsApproval = allowance.Cmp(req.AmountIn) < 0
	}

	return quote, nil
}

// resolvePath builds the direct two-hop path, substituting the wrapped
// native token for native sentinels.
func (o *Orchestrator) resolvePath(ctx context.Context, tokenIn, tokenOut chain.Token) ([]string, error) {
	wrapped := ""
	resolve := func(t chain.Token) (string, error) {
		if !t.IsNative() {
			return t.Address, nil
		}
		if wrapped == "" {
			w, err := o.client.WrappedNative(ctx, o.network.Router)
			if err != nil {
				return "", walleterr.Wrap(walleterr.ErrSwapFailed, "resolving wrapped native")
			}
			wrapped = w
		}
		return wrapped, nil
	}

	in, err := resolve(tokenIn)
	if err != nil {
		return nil, err
	}
	out, err := resolve(tokenOut)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(in, out) {
		return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"reason": "cannot swap a token for itself",
		})
	}

	return []string{in, out}, nil
}

// Approve grants the router unlimited allowance for the quoted input token
// and waits for the transaction to be mined.
func (o *Orchestrator) Approve(ctx context.Context, privateKeyHex string) (string, error) {
	o.mu.Lock()
	if o.state != StateQuoteReady || o.quote == nil {
		o.mu.Unlock()
		return "", walleterr.Wrap(walleterr.ErrSwapFailed, "no quote to approve")
	}
	if !o.quote.NeedsApproval {
		o.mu.Unlock()
		return "", walleterr.Wrap(walleterr.ErrSwapFailed, "approval not required")
	}
	quote := o.quote
	o.state = StateApproving
	o.mu.Unlock()

	txHash, err := o.client.Send(ctx, evm.SendRequest{
		PrivateKeyHex: privateKeyHex,
		To:            quote.TokenIn.Address,
		Data:          evm.ApproveCalldata(o.network.Router, evm.MaxApproval),
	})
	if err == nil {
		err = o.client.WaitMined(ctx, txHash)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.logger.Error("approval failed for %s: %v", quote.TokenIn.Symbol, err)
		o.state = StateFailed
		o.lastErr = walleterr.Wrap(walleterr.ErrSwapFailed, "approving %s", quote.TokenIn.Symbol)
		return "", o.lastErr
	}

	quote.NeedsApproval = false
	o.state = StateQuoteReady
	o.logger.Debug("approved %s for router %s: %s", quote.TokenIn.Symbol, o.network.Router, txHash)
	return txHash, nil
}

// Execute broadcasts the swap for the held quote and waits for it to be
// mined. The recipient receives the output.
func (o *Orchestrator) Execute(ctx context.Context, privateKeyHex, recipient string) (string, error) {
	o.mu.Lock()
	if o.state != StateQuoteReady || o.quote == nil {
		o.mu.Unlock()
		return "", walleterr.ErrQuoteStale
	}
	if o.quote.NeedsApproval {
		o.mu.Unlock()
		return "", walleterr.Wrap(walleterr.ErrSwapFailed, "input token requires approval first")
	}
	quote := o.quote
	o.state = StateExecuting
	o.mu.Unlock()

	deadline := big.NewInt(time.Now().Add(o.deadline).Unix())

	req := evm.SendRequest{
		PrivateKeyHex: privateKeyHex,
		To:            o.network.Router,
	}

	switch {
	case quote.TokenIn.IsNative():
		req.Value = quote.AmountIn
		req.Data = evm.SwapNativeForTokensCalldata(quote.MinOut, quote.Path, recipient, deadline)
	case quote.TokenOut.IsNative():
		req.Data = evm.SwapTokensForNativeCalldata(quote.AmountIn, quote.MinOut, quote.Path, recipient, deadline)
	default:
		req.Data = evm.SwapTokensForTokensCalldata(quote.AmountIn, quote.MinOut, quote.Path, recipient, deadline)
	}

	txHash, err := o.client.Send(ctx, req)
	if err == nil {
		err = o.client.WaitMined(ctx, txHash)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.logger.Error("swap failed %s -> %s: %v", quote.TokenIn.Symbol, quote.TokenOut.Symbol, err)
		o.state = StateFailed
		o.lastErr = walleterr.ErrSwapFailed
		return "", o.lastErr
	}

	o.state = StateCompleted
	o.quote = nil
	o.logger.Debug("swap completed %s -> %s: %s", quote.TokenIn.Symbol, quote.TokenOut.Symbol, txHash)
	return txHash, nil
}

// nopLogger discards all messages.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
