package history

import (
	"context"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/chain"
)

// MaxRecords caps the merged history list.
const MaxRecords = 50

// Direction marks which way value moved relative to the queried address.
type Direction string

const (
	// DirectionIn means the address received value.
	DirectionIn Direction = "in"

	// DirectionOut means the address sent value.
	DirectionOut Direction = "out"
)

// Record is one merged history entry.
type Record struct {
	// Hash is the transaction hash.
	Hash string `json:"hash"`

	// From and To are the transfer endpoints.
	From string `json:"from"`
	To   string `json:"to"`

	// Amount is the transferred amount as a decimal string.
	Amount string `json:"amount"`

	// Symbol is the asset symbol.
	Symbol string `json:"symbol"`

	// Timestamp is the block time in Unix seconds.
	Timestamp int64 `json:"timestamp"`

	// Direction is the transfer direction relative to the queried address.
	Direction Direction `json:"direction"`

	// Failed marks a transaction that reverted on chain.
	Failed bool `json:"failed"`

	// Token marks an ERC-20 transfer, false for native transfers.
	Token bool `json:"token"`
}

// TxSource is the slice of indexer behavior the aggregator needs.
type TxSource interface {
	// NativeTransactions lists native transfers for an address.
	NativeTransactions(ctx context.Context, address string) ([]Transfer, error)

	// TokenTransactions lists ERC-20 transfers touching an address.
	TokenTransactions(ctx context.Context, address string) ([]Transfer, error)
}

// LogWriter is the logging interface the aggregator writes to.
type LogWriter interface {
	// Debug writes a debug-level message.
	Debug(format string, args ...any)

	// Error writes an error-level message.
	Error(format string, args ...any)
}

// Options configures an Aggregator.
type Options struct {
	// Cooldown is the pause between the native and token queries, keeping
	// free-tier indexers from throttling the second call.
	Cooldown time.Duration

	// Retry overrides the retry policy for each indexer query.
	Retry *chain.RetryPolicy

	// NativeSymbol labels native transfers, e.g. "BNB".
	NativeSymbol string

	// NativeDecimals is the native asset precision.
	NativeDecimals int

	// Logger receives fetch diagnostics. Nil discards them.
	Logger LogWriter
}

// Aggregator merges native and token transfers into one ordered history.
// Fetching is best effort: an address with an unreachable indexer gets an
// empty history, never an error.
type Aggregator struct {
	source         TxSource
	cooldown       time.Duration
	retry          chain.RetryPolicy
	nativeSymbol   string
	nativeDecimals int
	logger         LogWriter
}

// NewAggregator creates an aggregator over one indexer.
func NewAggregator(source TxSource, opts *Options) *Aggregator {
	a := &Aggregator{
		source:         source,
		retry:          chain.DefaultRetryPolicy(),
		nativeDecimals: 18,
	}
	if opts != nil {
		a.cooldown = opts.Cooldown
		a.nativeSymbol = opts.NativeSymbol
		if opts.NativeDecimals > 0 {
			a.nativeDecimals = opts.NativeDecimals
		}
		if opts.Retry != nil {
			a.retry = *opts.Retry
		}
		a.logger = opts.Logger
	}
	if a.logger == nil {
		a.logger = nopLogger{}
	}
	return a
}

// Fetch returns the merged history for an address: native transfers first,
// a cooldown, then token transfers, deduplicated by (hash, symbol), sorted
// newest first, and capped at MaxRecords.
func (a *Aggregator) Fetch(ctx context.Context, address string) []Record {
	native, err := chain.Do(ctx, a.retry, func() ([]Transfer, error) {
		return a.source.NativeTransactions(ctx, address)
	})
	if err != nil {
		a.logger.Error("native history fetch failed for %s: %v", address, err)
		native = nil
	}

	if a.cooldown > 0 {
		select {
		case <-ctx.Done():
			return []Record{}
		case <-time.After(a.cooldown):
		}
	}

	tokens, err := chain.Do(ctx, a.retry, func() ([]Transfer, error) {
		return a.source.TokenTransactions(ctx, address)
	})
	if err != nil {
		a.logger.Error("token history fetch failed for %s: %v", address, err)
		tokens = nil
	}

	records := make([]Record, 0, len(native)+len(tokens))
	for _, t := range native {
		records = append(records, a.nativeRecord(t, address))
	}
	for _, t := range tokens {
		records = append(records, a.tokenRecord(t, address))
	}

	records = dedupe(records)

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	if len(records) > MaxRecords {
		records = records[:MaxRecords]
	}

	a.logger.Debug("history for %s: %d native, %d token, %d merged", address, len(native), len(tokens), len(records))
	return records
}

// nativeRecord maps a native transfer.
func (a *Aggregator) nativeRecord(t Transfer, address string) Record {
	return Record{
		Hash:      t.Hash,
		From:      t.From,
		To:        t.To,
		Amount:    formatRawAmount(t.Value, a.nativeDecimals),
		Symbol:    a.nativeSymbol,
		Timestamp: parseTimestamp(t.TimeStamp),
		Direction: direction(t, address),
		Failed:    t.IsError == "1",
	}
}

// tokenRecord maps an ERC-20 transfer.
func (a *Aggregator) tokenRecord(t Transfer, address string) Record {
	decimals := a.nativeDecimals
	if d, err := strconv.Atoi(t.TokenDecimal); err == nil {
		decimals = d
	}

	return Record{
		Hash:      t.Hash,
		From:      t.From,
		To:        t.To,
		Amount:    formatRawAmount(t.Value, decimals),
		Symbol:    t.TokenSymbol,
		Timestamp: parseTimestamp(t.TimeStamp),
		Direction: direction(t, address),
		Token:     true,
	}
}

// dedupe drops records sharing (hash, symbol) with an earlier one. A swap
// produces both a native entry and a token entry for one hash; those are
// distinct. The same transfer reported twice is not.
func dedupe(records []Record) []Record {
	type key struct {
		hash   string
		symbol string
	}

	seen := make(map[key]bool, len(records))
	out := records[:0]
	for _, r := range records {
		k := key{hash: strings.ToLower(r.Hash), symbol: r.Symbol}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// direction classifies a transfer relative to the queried address.
func direction(t Transfer, address string) Direction {
	if strings.EqualFold(t.From, address) {
		return DirectionOut
	}
	return DirectionIn
}

// parseTimestamp reads the indexer's Unix-seconds string.
func parseTimestamp(s string) int64 {
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// formatRawAmount renders a raw integer amount string at the given
// precision. Unparseable values render as "0".
func formatRawAmount(value string, decimals int) string {
	raw, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return "0"
	}
	return chain.FormatDecimalAmount(raw, decimals)
}

// nopLogger discards all messages.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
