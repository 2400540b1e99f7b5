package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatAuto, ParseFormat("auto"))
	assert.Equal(t, FormatAuto, ParseFormat("nonsense"))
}

func TestFormatterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewFormatter(FormatJSON, &buf)
	require.True(t, f.IsJSON())

	require.NoError(t, f.Print(map[string]string{"symbol": "BNB"}))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "BNB", decoded["symbol"])
}

func TestFormatErrorJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := walleterr.WithSuggestion(walleterr.ErrInvalidMnemonic, "check word 3")
	require.NoError(t, FormatError(&buf, err, FormatJSON))

	var decoded ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, walleterr.ErrInvalidMnemonic.Code, decoded.Error.Code)
	assert.Equal(t, "check word 3", decoded.Error.Suggestion)
	assert.Equal(t, walleterr.ExitInput, decoded.Error.ExitCode)
}

func TestFormatErrorText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := walleterr.WithSuggestion(walleterr.ErrInvalidMnemonic, "check word 3")
	require.NoError(t, FormatError(&buf, err, FormatText))

	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "Hint: check word 3")
}

func TestTableRender(t *testing.T) {
	t.Parallel()

	table := NewTable("SYMBOL", "BALANCE")
	table.AddRow("BNB", "2.5")
	table.AddRow("BUSD", "100.0")

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "------")
	assert.Contains(t, out, "BUSD    100.0")
}
