package cli

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/output"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// itoa renders an int for table cells.
func itoa(v int) string {
	return strconv.Itoa(v)
}

// newTable creates an output table.
func newTable(headers ...string) *output.Table {
	return output.NewTable(headers...)
}

// splitWords splits whitespace-separated input.
func splitWords(s string) []string {
	return strings.Fields(s)
}

// formatAmount renders a raw amount at the given precision.
func formatAmount(amount *big.Int, decimals int) string {
	return chain.FormatDecimalAmount(amount, decimals)
}

// parseChainID parses a decimal chain id argument.
func parseChainID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"chain_id": s,
			"reason":   "chain id must be a decimal number",
		})
	}
	return id, nil
}
