package swap

import (
	"context"
	"encoding/hex"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/chain/evm"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

const (
	testRouter  = "0x10ED43C718714eb63d5aA57B78B54704E256024E"
	testWrapped = "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
	testOwner   = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	busdAddr    = "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56"
	cakeAddr    = "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"
	testKey     = "4646464646464646464646464646464646464646464646464646464646464646"
)

var (
	bnb  = chain.Token{Address: chain.NativeAddress, Symbol: "BNB", Decimals: 18, Native: true, ChainID: 56}
	busd = chain.Token{Address: busdAddr, Symbol: "BUSD", Decimals: 18, ChainID: 56}
	cake = chain.Token{Address: cakeAddr, Symbol: "Cake", Decimals: 18, ChainID: 56}
)

// fakeRouter answers router calls from canned values and records sends.
type fakeRouter struct {
	mu        sync.Mutex
	out       *big.Int
	quoteErr  error
	allowance *big.Int
	sendErr   error
	minedErr  error
	quotes    int
	sent      []evm.SendRequest
}

func (f *fakeRouter) AmountsOut(_ context.Context, _ string, amountIn *big.Int, path []string) ([]*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.quotes++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return []*big.Int{amountIn, f.out}, nil
}

func (f *fakeRouter) WrappedNative(_ context.Context, _ string) (string, error) {
	return testWrapped, nil
}

func (f *fakeRouter) Allowance(_ context.Context, _, _, _ string) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.allowance == nil {
		return big.NewInt(0), nil
	}
	return f.allowance, nil
}

func (f *fakeRouter) Send(_ context.Context, req evm.SendRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, req)
	return "0xabc123", nil
}

func (f *fakeRouter) WaitMined(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minedErr
}

func (f *fakeRouter) quoteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quotes
}

func bscNetwork() chain.Network {
	return chain.Network{
		Name:    "BNB Smart Chain",
		ChainID: 56,
		Symbol:  "BNB",
		Router:  testRouter,
	}
}

func TestQuoteZeroAmountIsEmpty(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(1000)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	quote, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(0),
		TokenIn:  busd,
		TokenOut: cake,
	})
	require.NoError(t, err)
	assert.True(t, quote.Empty())
	assert.Zero(t, router.quoteCount(), "no router call for a zero amount")

	state, _ := o.State()
	assert.Equal(t, StateIdle, state)
}

func TestQuoteWithoutRouterIsEmpty(t *testing.T) {
	t.Parallel()

	network := bscNetwork()
	network.Router = ""
	o := NewOrchestrator(&fakeRouter{}, network, nil)

	quote, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  busd,
		TokenOut: cake,
	})
	require.NoError(t, err)
	assert.True(t, quote.Empty())
}

func TestQuoteSlippageFloor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     int64
		wantMin int64
	}{
		{name: "exact division", out: 100, wantMin: 98},
		{name: "floors remainder", out: 101, wantMin: 98},  // 9898/100
		{name: "floors again", out: 999, wantMin: 979},     // 97902/100
		{name: "tiny output", out: 1, wantMin: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := &fakeRouter{out: big.NewInt(tt.out), allowance: evm.MaxApproval}
			o := NewOrchestrator(router, bscNetwork(), nil)

			quote, err := o.Quote(context.Background(), QuoteRequest{
				AmountIn: big.NewInt(1000),
				TokenIn:  busd,
				TokenOut: cake,
				Owner:    testOwner,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, quote.MinOut.Int64())
		})
	}
}

func TestQuoteResolvesNativePath(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	quote, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  bnb,
		TokenOut: busd,
		Owner:    testOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{testWrapped, busdAddr}, quote.Path)
	assert.False(t, quote.NeedsApproval, "native input never needs approval")
}

func TestQuoteSameTokenRejected(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeRouter{out: big.NewInt(1)}, bscNetwork(), nil)

	_, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  busd,
		TokenOut: busd,
	})
	require.ErrorIs(t, err, walleterr.ErrInvalidInput)
}

func TestQuoteNeedsApproval(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000), allowance: big.NewInt(10)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	quote, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  busd,
		TokenOut: cake,
		Owner:    testOwner,
	})
	require.NoError(t, err)
	assert.True(t, quote.NeedsApproval)

	state, _ := o.State()
	assert.Equal(t, StateQuoteReady, state)
}

func TestApproveThenExecute(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000), allowance: big.NewInt(0)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	_, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  busd,
		TokenOut: cake,
		Owner:    testOwner,
	})
	require.NoError(t, err)

	txHash, err := o.Approve(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", txHash)

	// The approval targets the token with max allowance for the router.
	require.Len(t, router.sent, 1)
	approval := router.sent[0]
	assert.Equal(t, busdAddr, approval.To)
	assert.Equal(t, "095ea7b3", hex.EncodeToString(approval.Data[:4]))

	state, _ := o.State()
	assert.Equal(t, StateQuoteReady, state)

	txHash, err = o.Execute(context.Background(), testKey, testOwner)
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", txHash)

	require.Len(t, router.sent, 2)
	swap := router.sent[1]
	assert.Equal(t, testRouter, swap.To)
	assert.Equal(t, "38ed1739", hex.EncodeToString(swap.Data[:4]))

	state, _ = o.State()
	assert.Equal(t, StateCompleted, state)
}

func TestExecuteNativeInCarriesValue(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	_, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  bnb,
		TokenOut: busd,
	})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), testKey, testOwner)
	require.NoError(t, err)

	require.Len(t, router.sent, 1)
	swap := router.sent[0]
	assert.Equal(t, int64(1000), swap.Value.Int64())
	assert.Equal(t, "7ff36ab5", hex.EncodeToString(swap.Data[:4]))
}

func TestExecuteNativeOutSelector(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000), allowance: evm.MaxApproval}
	o := NewOrchestrator(router, bscNetwork(), nil)

	_, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  busd,
		TokenOut: bnb,
		Owner:    testOwner,
	})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), testKey, testOwner)
	require.NoError(t, err)

	require.Len(t, router.sent, 1)
	assert.Equal(t, "18cbafe5", hex.EncodeToString(router.sent[0].Data[:4]))
}

func TestExecuteWithoutQuoteIsStale(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeRouter{}, bscNetwork(), nil)

	_, err := o.Execute(context.Background(), testKey, testOwner)
	require.ErrorIs(t, err, walleterr.ErrQuoteStale)
}

func TestExecuteRequiresApprovalFirst(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000), allowance: big.NewInt(0)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	_, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  busd,
		TokenOut: cake,
		Owner:    testOwner,
	})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), testKey, testOwner)
	require.ErrorIs(t, err, walleterr.ErrSwapFailed)
}

func TestExecuteFailureState(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000), sendErr: walleterr.ErrNetworkError}
	o := NewOrchestrator(router, bscNetwork(), nil)

	_, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  bnb,
		TokenOut: busd,
	})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), testKey, testOwner)
	require.ErrorIs(t, err, walleterr.ErrSwapFailed)
	assert.Equal(t, "swap failed - try again", walleterr.ErrSwapFailed.Message)

	state, cause := o.State()
	assert.Equal(t, StateFailed, state)
	require.Error(t, cause)

	// Reset returns to idle.
	o.Reset()
	state, cause = o.State()
	assert.Equal(t, StateIdle, state)
	assert.NoError(t, cause)
}

func TestRevertedSwapFails(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000), minedErr: evm.ErrTxReverted}
	o := NewOrchestrator(router, bscNetwork(), nil)

	_, err := o.Quote(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  bnb,
		TokenOut: busd,
	})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), testKey, testOwner)
	require.ErrorIs(t, err, walleterr.ErrSwapFailed)
}

func TestQuoterDebounceCollapsesRequests(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	var mu sync.Mutex
	var delivered []*Quote
	q := NewQuoter(o, 50*time.Millisecond, func(quote *Quote, err error) {
		mu.Lock()
		defer mu.Unlock()
		require.NoError(t, err)
		delivered = append(delivered, quote)
	})

	// Three rapid edits; only the last amount should be priced.
	for _, amount := range []int64{1, 10, 100} {
		q.Request(context.Background(), QuoteRequest{
			AmountIn: big.NewInt(amount),
			TokenIn:  bnb,
			TokenOut: busd,
		})
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, int64(100), delivered[0].AmountIn.Int64())
	mu.Unlock()
	assert.Equal(t, 1, router.quoteCount())

	state, _ := o.State()
	assert.Equal(t, StateQuoteReady, state)
}

func TestQuoterStopCancelsPending(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{out: big.NewInt(5000)}
	o := NewOrchestrator(router, bscNetwork(), nil)

	q := NewQuoter(o, 50*time.Millisecond, func(*Quote, error) {
		t.Error("delivery after Stop")
	})

	q.Request(context.Background(), QuoteRequest{
		AmountIn: big.NewInt(1000),
		TokenIn:  bnb,
		TokenOut: busd,
	})
	q.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, router.quoteCount())

	state, _ := o.State()
	assert.Equal(t, StateIdle, state)
}
