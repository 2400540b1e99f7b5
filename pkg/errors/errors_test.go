package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

var errPlain = errors.New("plain error")

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, walleterr.ExitSuccess},
		{"general error", walleterr.ErrGeneral, walleterr.ExitGeneral},
		{"input error", walleterr.ErrInvalidInput, walleterr.ExitInput},
		{"auth error", walleterr.ErrDecryptionFailed, walleterr.ExitAuth},
		{"not found error", walleterr.ErrVaultNotFound, walleterr.ExitNotFound},
		{"swap failed", walleterr.ErrSwapFailed, walleterr.ExitGeneral},
		{"plain error", errPlain, walleterr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code := walleterr.ExitCode(tt.err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	t.Parallel()
	// Wrapping preserves error identity
	wrapped := walleterr.Wrap(walleterr.ErrDecryptionFailed, "unlock")
	require.ErrorIs(t, wrapped, walleterr.ErrDecryptionFailed)

	wrapped = walleterr.Wrap(walleterr.ErrInvalidMnemonic, "import")
	require.ErrorIs(t, wrapped, walleterr.ErrInvalidMnemonic)

	wrapped = walleterr.Wrap(walleterr.ErrTokenTracked, "add token")
	require.ErrorIs(t, wrapped, walleterr.ErrTokenTracked)
}

func TestWrapNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, walleterr.Wrap(nil, "context"))
	assert.NoError(t, walleterr.WithDetails(nil, map[string]string{"k": "v"}))
	assert.NoError(t, walleterr.WithSuggestion(nil, "do the thing"))
}

func TestWithDetailsDeterministicOrder(t *testing.T) {
	t.Parallel()
	err := walleterr.WithDetails(walleterr.ErrInvalidContract, map[string]string{
		"chain_id": "56",
		"address":  "0xdead",
	})
	require.Error(t, err)
	assert.Equal(t, "address is not a token contract (address: 0xdead) (chain_id: 56)", err.Error())
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()
	err := walleterr.WithSuggestion(walleterr.ErrInvalidAddress, "addresses start with 0x")

	var we *walleterr.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "addresses start with 0x", we.Suggestion)
	assert.Equal(t, "INVALID_ADDRESS", we.Code)
}

func TestCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "SWAP_FAILED", walleterr.Code(walleterr.ErrSwapFailed))
	assert.Equal(t, "GENERAL_ERROR", walleterr.Code(errPlain))
}

func TestUnwrap(t *testing.T) {
	t.Parallel()
	wrapped := walleterr.Wrap(errPlain, "fetching balance")
	require.ErrorIs(t, wrapped, errPlain)
}
