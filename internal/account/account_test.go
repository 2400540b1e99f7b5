package account_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3twenty/3twenty-wallet/internal/account"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// BIP39 test vector phrase; the m/44'/60'/0'/0/0 address is a published
// reference value.
const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

const testPhraseAddress = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"

func TestGenerate(t *testing.T) {
	t.Parallel()
	acct, err := account.Generate("main")
	require.NoError(t, err)

	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, "main", acct.Name)
	assert.Len(t, strings.Fields(acct.Mnemonic), 12)
	assert.True(t, strings.HasPrefix(acct.Address, "0x"))
	assert.Len(t, acct.Address, 42)
	assert.Len(t, acct.PrivateKey, 64)

	// Address is the deterministic derivation of the private key
	derived, err := account.DeriveAddress(acct.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, acct.Address, derived)
}

func TestGenerateUnique(t *testing.T) {
	t.Parallel()
	a, err := account.Generate("a")
	require.NoError(t, err)
	b, err := account.Generate("b")
	require.NoError(t, err)

	assert.NotEqual(t, a.Address, b.Address)
	assert.NotEqual(t, a.Mnemonic, b.Mnemonic)
}

func TestImportFromPhraseKnownVector(t *testing.T) {
	t.Parallel()
	acct, err := account.ImportFromPhrase("restored", testPhrase)
	require.NoError(t, err)
	assert.Equal(t, testPhraseAddress, acct.Address)
	assert.Equal(t, testPhrase, acct.Mnemonic)
}

func TestImportFromPhraseIdempotent(t *testing.T) {
	t.Parallel()
	first, err := account.ImportFromPhrase("a", testPhrase)
	require.NoError(t, err)
	second, err := account.ImportFromPhrase("b", testPhrase)
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.PrivateKey, second.PrivateKey)
}

func TestImportFromPhraseNormalizesInput(t *testing.T) {
	t.Parallel()
	messy := "1. Abandon\n2. abandon\n3. abandon\n4. abandon\n5. abandon\n6. abandon\n" +
		"7. abandon\n8. abandon\n9. abandon\n10. abandon\n11. abandon\n12. about"

	acct, err := account.ImportFromPhrase("pasted", messy)
	require.NoError(t, err)
	assert.Equal(t, testPhraseAddress, acct.Address)
}

func TestImportFromPhraseGenerateRoundTrip(t *testing.T) {
	t.Parallel()
	generated, err := account.Generate("fresh")
	require.NoError(t, err)

	imported, err := account.ImportFromPhrase("reimported", generated.Mnemonic)
	require.NoError(t, err)
	assert.Equal(t, generated.Address, imported.Address)
}

func TestImportFromPhraseInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		phrase string
	}{
		{"empty", ""},
		{"wrong word count", "abandon abandon abandon"},
		{"bad checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"},
		{"unknown word", strings.Replace(testPhrase, "about", "aboot", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := account.ImportFromPhrase("x", tt.phrase)
			require.ErrorIs(t, err, walleterr.ErrInvalidMnemonic)
		})
	}
}

func TestImportFromPhraseTypoSuggestion(t *testing.T) {
	t.Parallel()
	_, err := account.ImportFromPhrase("x", strings.Replace(testPhrase, "about", "abot", 1))
	require.ErrorIs(t, err, walleterr.ErrInvalidMnemonic)

	var we *walleterr.WalletError
	require.ErrorAs(t, err, &we)
	assert.Contains(t, we.Suggestion, "about")
}

func TestImportFromKey(t *testing.T) {
	t.Parallel()
	// EIP-155 example key and its published address
	const key = "4646464646464646464646464646464646464646464646464646464646464646"

	acct, err := account.ImportFromKey("raw", key)
	require.NoError(t, err)
	assert.Equal(t, "0x9d8A62f656a8d1615C1294fd71e9CFb3E4855A4F", acct.Address)
	assert.Empty(t, acct.Mnemonic)

	// 0x prefix is accepted and stripped
	prefixed, err := account.ImportFromKey("raw2", "0x"+key)
	require.NoError(t, err)
	assert.Equal(t, acct.Address, prefixed.Address)
	assert.Equal(t, key, prefixed.PrivateKey)
}

func TestImportFromKeyInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"too short", "abcd"},
		{"not hex", strings.Repeat("zz", 32)},
		{"too long", strings.Repeat("ab", 33)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := account.ImportFromKey("x", tt.key)
			require.ErrorIs(t, err, walleterr.ErrInvalidPrivateKey)
		})
	}
}

func TestSuggestWord(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abandon", account.SuggestWord("abandon"))
	assert.Equal(t, "about", account.SuggestWord("abot"))
	assert.Empty(t, account.SuggestWord("zzzzzzzzzz"))
}

func TestGenerateMnemonicWordCounts(t *testing.T) {
	t.Parallel()
	m12, err := account.GenerateMnemonic(12)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m12), 12)

	m24, err := account.GenerateMnemonic(24)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m24), 24)

	_, err = account.GenerateMnemonic(15)
	require.ErrorIs(t, err, walleterr.ErrInvalidMnemonic)
}
