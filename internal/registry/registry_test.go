package registry

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/chain/evm"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

const (
	testHolder = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	busdAddr   = "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56"
	usdtAddr   = "0x55d398326f99059fF775485246999027B3197955"
	cakeAddr   = "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"
)

// fakeReader serves balances from maps and records call order.
type fakeReader struct {
	native     *big.Int
	nativeErr  error
	balances   map[string]*big.Int
	failTokens map[string]error
	metadata   map[string]*evm.TokenMetadata
	calls      []string
}

func (f *fakeReader) NativeBalance(_ context.Context, _ string) (*big.Int, error) {
	f.calls = append(f.calls, "native")
	if f.nativeErr != nil {
		return nil, f.nativeErr
	}
	return f.native, nil
}

func (f *fakeReader) TokenBalance(_ context.Context, token, _ string) (*big.Int, error) {
	f.calls = append(f.calls, token)
	if err, ok := f.failTokens[token]; ok {
		return nil, err
	}
	if balance, ok := f.balances[token]; ok {
		return balance, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeReader) FetchTokenMetadata(_ context.Context, token string) (*evm.TokenMetadata, error) {
	if meta, ok := f.metadata[token]; ok {
		return meta, nil
	}
	return nil, walleterr.ErrInvalidContract
}

// fakeSource hands out one reader for every chain id.
type fakeSource struct {
	reader *fakeReader
}

func (f *fakeSource) ClientFor(_ int64) (ChainReader, error) {
	return f.reader, nil
}

func seedTokens() []chain.Token {
	return []chain.Token{
		{Address: chain.NativeAddress, Symbol: "BNB", Decimals: 18, Balance: "0", Native: true, ChainID: 56},
		{Address: busdAddr, Symbol: "BUSD", Decimals: 18, Balance: "0", ChainID: 56},
		{Address: usdtAddr, Symbol: "USDT", Decimals: 18, Balance: "0", ChainID: 56},
	}
}

func wei(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestRefreshUpdatesAllBalances(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		native: wei(2),
		balances: map[string]*big.Int{
			busdAddr: wei(100),
			usdtAddr: wei(50),
		},
	}
	r := New(&fakeSource{reader: reader}, seedTokens(), nil)

	tokens, err := r.Refresh(context.Background(), 56, testHolder)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "2.0", tokens[0].Balance)
	assert.Equal(t, "100.0", tokens[1].Balance)
	assert.Equal(t, "50.0", tokens[2].Balance)

	// Fetches run sequentially in tracking order.
	assert.Equal(t, []string{"native", busdAddr, usdtAddr}, reader.calls)
}

func TestRefreshKeepsStaleBalanceOnFailure(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		native: wei(2),
		balances: map[string]*big.Int{
			busdAddr: wei(100),
			usdtAddr: wei(50),
		},
	}
	r := New(&fakeSource{reader: reader}, seedTokens(), nil)

	_, err := r.Refresh(context.Background(), 56, testHolder)
	require.NoError(t, err)

	// Second refresh: the middle token's endpoint fails.
	reader.failTokens = map[string]error{
		busdAddr: walleterr.ErrNetworkError,
	}
	reader.native = wei(3)
	reader.balances[usdtAddr] = wei(75)

	tokens, err := r.Refresh(context.Background(), 56, testHolder)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "3.0", tokens[0].Balance)
	assert.Equal(t, "100.0", tokens[1].Balance, "failed fetch keeps last-known balance")
	assert.Equal(t, "75.0", tokens[2].Balance)
}

func TestRefreshMergesIntoCurrentList(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{native: wei(1)}
	r := New(&fakeSource{reader: reader}, seedTokens(), nil)

	// Remove a custom-less default mid-flight is not possible through the
	// API, so simulate the merge edge with a token added between snapshot
	// and merge: its balance must survive untouched.
	_, err := r.Refresh(context.Background(), 56, testHolder)
	require.NoError(t, err)

	require.NoError(t, r.Add(chain.Token{
		Address: cakeAddr, Symbol: "CAKE", Decimals: 18, Balance: "7.0", ChainID: 56,
	}))

	tokens := r.Tokens(56)
	require.Len(t, tokens, 4)
	assert.Equal(t, "7.0", tokens[3].Balance)
}

func TestRefreshRejectsBadHolder(t *testing.T) {
	t.Parallel()

	r := New(&fakeSource{reader: &fakeReader{}}, seedTokens(), nil)

	_, err := r.Refresh(context.Background(), 56, "nope")
	require.ErrorIs(t, err, walleterr.ErrInvalidAddress)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		metadata: map[string]*evm.TokenMetadata{
			cakeAddr: {Name: "PancakeSwap Token", Symbol: "Cake", Decimals: 18},
		},
	}
	r := New(&fakeSource{reader: reader}, seedTokens(), nil)

	t.Run("valid contract", func(t *testing.T) {
		token, err := r.Lookup(context.Background(), 56, cakeAddr)
		require.NoError(t, err)
		assert.Equal(t, "Cake", token.Symbol)
		assert.Equal(t, 18, token.Decimals)
		assert.Equal(t, "0", token.Balance)

		// Lookup alone does not track.
		assert.Len(t, r.Tokens(56), 3)
	})

	t.Run("malformed address", func(t *testing.T) {
		_, err := r.Lookup(context.Background(), 56, "0x123")
		require.ErrorIs(t, err, walleterr.ErrInvalidAddress)
	})

	t.Run("already tracked", func(t *testing.T) {
		_, err := r.Lookup(context.Background(), 56, busdAddr)
		require.ErrorIs(t, err, walleterr.ErrTokenTracked)
	})

	t.Run("tracked address in different case", func(t *testing.T) {
		_, err := r.Lookup(context.Background(), 56, "0xE9E7CEA3DEDCA5984780BAFC599BD69ADD087D56")
		require.ErrorIs(t, err, walleterr.ErrTokenTracked)
	})

	t.Run("not a token contract", func(t *testing.T) {
		_, err := r.Lookup(context.Background(), 56, testHolder)
		require.ErrorIs(t, err, walleterr.ErrInvalidContract)
	})

	t.Run("same address on another chain is untracked", func(t *testing.T) {
		_, err := r.Lookup(context.Background(), 1, busdAddr)
		require.ErrorIs(t, err, walleterr.ErrInvalidContract)
	})
}

func TestAddAndRemove(t *testing.T) {
	t.Parallel()

	r := New(&fakeSource{reader: &fakeReader{}}, seedTokens(), nil)

	cake := chain.Token{Address: cakeAddr, Symbol: "Cake", Decimals: 18, ChainID: 56}
	require.NoError(t, r.Add(cake))
	require.ErrorIs(t, r.Add(cake), walleterr.ErrTokenTracked)

	custom := r.CustomTokens()
	require.Len(t, custom, 1)
	assert.Equal(t, "Cake", custom[0].Symbol)

	t.Run("native cannot be removed", func(t *testing.T) {
		err := r.Remove(56, chain.NativeAddress)
		require.ErrorIs(t, err, walleterr.ErrInvalidInput)
	})

	t.Run("default cannot be removed", func(t *testing.T) {
		err := r.Remove(56, busdAddr)
		require.ErrorIs(t, err, walleterr.ErrInvalidInput)
	})

	t.Run("unknown token", func(t *testing.T) {
		err := r.Remove(56, "0x000000000000000000000000000000000000dEaD")
		require.ErrorIs(t, err, walleterr.ErrTokenNotFound)
	})

	t.Run("custom token removed", func(t *testing.T) {
		require.NoError(t, r.Remove(56, cakeAddr))
		assert.Len(t, r.Tokens(56), 3)
		assert.Empty(t, r.CustomTokens())
	})
}

func TestNewCollapsesDuplicateSeeds(t *testing.T) {
	t.Parallel()

	seed := append(seedTokens(), chain.Token{
		Address: "0xE9E7CEA3DEDCA5984780BAFC599BD69ADD087D56", Symbol: "BUSD2", Decimals: 18, ChainID: 56,
	})
	r := New(&fakeSource{reader: &fakeReader{}}, seed, nil)

	tokens := r.Tokens(56)
	require.Len(t, tokens, 3)
	assert.Equal(t, "BUSD", tokens[1].Symbol)
}
