package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/web3twenty/3twenty-wallet/internal/walletcrypto"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// minPasswordLength is the minimum accepted vault password length.
const minPasswordLength = 8

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassword prompts for a new password with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPassword("Enter encryption password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < minPasswordLength {
		walletcrypto.ZeroBytes(password)
		return nil, walleterr.WithSuggestion(
			walleterr.ErrInvalidInput,
			"password must be at least 8 characters",
		)
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		walletcrypto.ZeroBytes(password)
		return nil, err
	}
	defer walletcrypto.ZeroBytes(confirm)

	if string(password) != string(confirm) {
		walletcrypto.ZeroBytes(password)
		return nil, walleterr.WithSuggestion(
			walleterr.ErrInvalidInput,
			"passwords do not match",
		)
	}

	return password, nil
}

// promptLine reads one visible line from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(prompt string) (bool, error) {
	answer, err := promptLine(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// unlockSession prompts for the vault password and unlocks the session.
func unlockSession() error {
	password, err := promptPassword("Vault password: ")
	if err != nil {
		return err
	}
	defer walletcrypto.ZeroBytes(password)

	return session.Unlock(string(password))
}
