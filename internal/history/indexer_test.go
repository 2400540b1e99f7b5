package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
)

const testAddress = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient("", nil)
	require.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestNativeTransactions(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{
			"status": "1",
			"message": "OK",
			"result": [
				{"hash": "0xaaa", "from": "0x1", "to": "0x2", "value": "1000000000000000000", "timeStamp": "1700000000", "isError": "0"},
				{"hash": "0xbbb", "from": "0x2", "to": "0x1", "value": "500", "timeStamp": "1699999000", "isError": "1"}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	transfers, err := client.NativeTransactions(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, "0xaaa", transfers[0].Hash)
	assert.Equal(t, "1", transfers[1].IsError)

	assert.Equal(t, "txlist", gotQuery["action"][0])
	assert.Equal(t, "account", gotQuery["module"][0])
	assert.Equal(t, testAddress, gotQuery["address"][0])
	assert.Equal(t, "desc", gotQuery["sort"][0])
	assert.NotEmpty(t, gotQuery["_"][0], "cache buster present")
}

func TestCacheBusterChangesPerRequest(t *testing.T) {
	t.Parallel()

	var busters []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		busters = append(busters, r.URL.Query().Get("_"))
		_, _ = w.Write([]byte(`{"status": "1", "message": "OK", "result": []}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	stamp := int64(1_700_000_000_000)
	client.now = func() time.Time {
		stamp++
		return time.UnixMilli(stamp)
	}

	_, err = client.NativeTransactions(context.Background(), testAddress)
	require.NoError(t, err)
	_, err = client.TokenTransactions(context.Background(), testAddress)
	require.NoError(t, err)

	require.Len(t, busters, 2)
	assert.NotEqual(t, busters[0], busters[1])
}

func TestNoTransactionsIsEmptySuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "0", "message": "No transactions found", "result": []}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	transfers, err := client.TokenTransactions(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestRateLimitedResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "0", "message": "NOTOK", "result": "Max rate limit reached"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.NativeTransactions(context.Background(), testAddress)
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrRateLimited)
	assert.True(t, chain.IsRetryable(err))
}

func TestHTTPRateLimitStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.NativeTransactions(context.Background(), testAddress)
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrRateLimited)
}

func TestServerErrorIsRetryable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.NativeTransactions(context.Background(), testAddress)
	require.Error(t, err)
	assert.True(t, chain.IsRetryable(err))
	assert.NotErrorIs(t, err, chain.ErrRateLimited)
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "0", "message": "NOTOK", "result": "Invalid address format"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.NativeTransactions(context.Background(), "junk")
	require.ErrorIs(t, err, ErrAPIError)
	assert.False(t, chain.IsRetryable(err))
}

func TestAPIKeyForwarded(t *testing.T) {
	t.Parallel()

	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("apikey")
		_, _ = w.Write([]byte(`{"status": "1", "message": "OK", "result": []}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, &ClientOptions{APIKey: "secret"})
	require.NoError(t, err)

	_, err = client.NativeTransactions(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
}
