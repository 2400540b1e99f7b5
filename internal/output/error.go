package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		return formatErrorJSON(w, err)
	}
	return formatErrorText(w, err)
}

// formatErrorJSON outputs the error in JSON format.
func formatErrorJSON(w io.Writer, err error) error {
	detail := ErrorDetail{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		ExitCode: walleterr.ExitGeneral,
	}

	var we *walleterr.WalletError
	if errors.As(err, &we) {
		detail = ErrorDetail{
			Code:       we.Code,
			Message:    we.Message,
			Details:    we.Details,
			Suggestion: we.Suggestion,
			ExitCode:   we.ExitCode,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ErrorOutput{Error: detail})
}

// formatErrorText outputs the error as readable text.
func formatErrorText(w io.Writer, err error) error {
	if _, werr := fmt.Fprintf(w, "Error: %s\n", err.Error()); werr != nil {
		return werr
	}

	var we *walleterr.WalletError
	if errors.As(err, &we) && we.Suggestion != "" {
		if _, werr := fmt.Fprintf(w, "Hint: %s\n", we.Suggestion); werr != nil {
			return werr
		}
	}

	return nil
}
