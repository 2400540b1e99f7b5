// Package history fetches and merges transaction history from
// Etherscan-compatible indexers.
package history

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/metrics"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

const (
	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 30 * time.Second

	// maxResponseBody is the maximum response body size to read (1 MB).
	maxResponseBody = 1 << 20

	// noTransactionsMessage is the indexer's answer for an empty account.
	noTransactionsMessage = "No transactions found"

	// rateLimitedResult is the indexer's answer when throttling.
	rateLimitedResult = "Max rate limit reached"
)

// Sentinel errors for the indexer API.
var (
	// ErrBaseURLRequired indicates the indexer URL was not provided.
	ErrBaseURLRequired = &walleterr.WalletError{
		Code:     "INDEXER_BASE_URL_REQUIRED",
		Message:  "indexer base URL is required",
		ExitCode: walleterr.ExitInput,
	}

	// ErrAPIError indicates the indexer returned an error response.
	ErrAPIError = &walleterr.WalletError{
		Code:     "INDEXER_API_ERROR",
		Message:  "indexer returned an error",
		ExitCode: walleterr.ExitGeneral,
	}
)

// apiResponse is the standard Etherscan-style envelope.
type apiResponse struct {
	Status  string          `json:"status"`  // "1" for success, "0" for error
	Message string          `json:"message"` // "OK" or error message
	Result  json.RawMessage `json:"result"`  // List payload, or an error string
}

// Transfer is one raw indexer record, shared by the native and token
// transaction endpoints.
type Transfer struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	IsError         string `json:"isError,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	TokenSymbol     string `json:"tokenSymbol,omitempty"`
	TokenDecimal    string `json:"tokenDecimal,omitempty"`
}

// Client queries one Etherscan-compatible indexer endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter

	// now supplies the cache-busting timestamp, overridable in tests.
	now func() time.Time
}

// ClientOptions configures the indexer client.
type ClientOptions struct {
	// APIKey is the optional indexer API key.
	APIKey string

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

// NewClient creates a new indexer client.
func NewClient(baseURL string, opts *ClientOptions) (*Client, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		rateLimiter: chain.NewRateLimiter(5, 5), // free tier allowance
		now:         time.Now,
	}

	if opts != nil {
		c.apiKey = opts.APIKey
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
	}

	return c, nil
}

// NativeTransactions lists native transfers for an address, newest first.
func (c *Client) NativeTransactions(ctx context.Context, address string) ([]Transfer, error) {
	return c.list(ctx, "txlist", address)
}

// TokenTransactions lists ERC-20 transfers touching an address, newest
// first.
func (c *Client) TokenTransactions(ctx context.Context, address string) ([]Transfer, error) {
	return c.list(ctx, "tokentx", address)
}

// list performs one indexer query and decodes the transfer list. An empty
// account is a success with no records, not an error. A throttled response
// surfaces as a rate-limit error so retry backoff can stretch.
func (c *Client) list(ctx context.Context, action, address string) ([]Transfer, error) {
	if err := c.rateLimiter.Wait(ctx, action); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("sort", "desc")
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	// Cache buster: some indexer CDNs serve stale lists for repeated URLs.
	params.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))

	reqURL := fmt.Sprintf("%s/api?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	metrics.Global.RecordIndexerCall(err)
	if err != nil {
		return nil, chain.WrapRetryable(fmt.Errorf("sending request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, chain.WrapRateLimited(walleterr.WithDetails(ErrAPIError, map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
		}))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, chain.WrapRetryable(walleterr.WithDetails(ErrAPIError, map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
			"body":   truncateBody(string(body), 512),
		}))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if apiResp.Status != "1" {
		if apiResp.Message == noTransactionsMessage {
			return nil, nil
		}

		var resultText string
		_ = json.Unmarshal(apiResp.Result, &resultText)
		if resultText == rateLimitedResult {
			return nil, chain.WrapRateLimited(ErrAPIError)
		}

		return nil, walleterr.WithDetails(ErrAPIError, map[string]string{
			"message": apiResp.Message,
			"result":  truncateBody(resultText, 256),
		})
	}

	var transfers []Transfer
	if err := json.Unmarshal(apiResp.Result, &transfers); err != nil {
		return nil, fmt.Errorf("parsing transfer list: %w", err)
	}

	return transfers, nil
}

// truncateBody truncates a string to maxLen characters.
func truncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
