package cli

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

func TestParseChainID(t *testing.T) {
	t.Parallel()

	id, err := parseChainID("56")
	require.NoError(t, err)
	assert.Equal(t, int64(56), id)

	_, err = parseChainID("mainnet")
	require.ErrorIs(t, err, walleterr.ErrInvalidInput)
}

func TestLooksLikeKey(t *testing.T) {
	t.Parallel()

	assert.True(t, looksLikeKey("0x4646464646464646464646464646464646464646464646464646464646464646"))
	assert.False(t, looksLikeKey("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"))
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.0", formatAmount(big.NewInt(1_000_000_000_000_000_000), 18))
	assert.Equal(t, "0.5", formatAmount(big.NewInt(500_000_000_000_000_000), 18))
}

func TestYesNo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}
