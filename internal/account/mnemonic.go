// Package account provides account key-material lifecycle: generation,
// import from recovery phrase or raw key, and address derivation.
package account

import (
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

var (
	// whitespaceRegex matches one or more whitespace characters.
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// numberedListRegex matches numbered list prefixes like "1." "2)" "3:"
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)

	// bulletListRegex matches bullet prefixes like "- " "* " "• "
	bulletListRegex = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// GenerateMnemonic creates a new BIP39 mnemonic phrase.
// wordCount must be 12 (128 bits entropy) or 24 (256 bits entropy).
func GenerateMnemonic(wordCount int) (string, error) {
	var bitSize int
	switch wordCount {
	case 12:
		bitSize = 128
	case 24:
		bitSize = 256
	default:
		return "", walleterr.ErrInvalidMnemonic
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", err
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic phrase is valid according to BIP39.
// It verifies word count, word validity, and checksum.
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return walleterr.ErrInvalidMnemonic
	}

	normalized := NormalizeMnemonicInput(mnemonic)

	// Fast word count check before the checksum validation
	words := strings.Fields(normalized)
	if len(words) != 12 && len(words) != 24 {
		return walleterr.ErrInvalidMnemonic
	}

	if !bip39.IsMnemonicValid(normalized) {
		return mnemonicErrorWithSuggestions(normalized)
	}

	return nil
}

// NormalizeMnemonicInput cleans and normalizes mnemonic input: lowercase,
// numbered list and bullet prefixes removed, commas treated as spaces,
// whitespace collapsed. Accepts phrases pasted from backup notes verbatim.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// MnemonicToSeed converts a BIP39 mnemonic phrase to a 64-byte seed.
// The returned seed should be zeroed by the caller after use.
func MnemonicToSeed(mnemonic string) ([]byte, error) {
	normalized := NormalizeMnemonicInput(mnemonic)

	seed, err := bip39.NewSeedWithErrorChecking(normalized, "")
	if err != nil {
		return nil, mnemonicErrorWithSuggestions(normalized)
	}

	return seed, nil
}

// MaxTypoDistance is the maximum Levenshtein distance to consider a
// suggestion. Words further away are too different to suggest.
const MaxTypoDistance = 2

// SuggestWord finds the closest BIP39 word to the input using Levenshtein
// distance. Returns empty string if no word is close enough.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string

	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
		if dist == 0 {
			return word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// mnemonicErrorWithSuggestions builds an ErrInvalidMnemonic carrying typo
// suggestions for words not in the BIP39 list.
func mnemonicErrorWithSuggestions(normalized string) error {
	valid := make(map[string]struct{}, 2048)
	for _, w := range bip39.GetWordList() {
		valid[w] = struct{}{}
	}

	var hints []string
	for i, word := range strings.Fields(normalized) {
		if _, ok := valid[word]; ok {
			continue
		}
		if s := SuggestWord(word); s != "" {
			hints = append(hints, "word "+itoa(i+1)+": '"+word+"' - did you mean '"+s+"'?")
		}
	}

	if len(hints) == 0 {
		return walleterr.ErrInvalidMnemonic
	}
	return walleterr.WithSuggestion(walleterr.ErrInvalidMnemonic, strings.Join(hints, "\n"))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
