package wallet

import (
	"context"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/history"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// History returns the merged transaction history for the active account on
// a network. A network without an indexer, or an unreachable one, yields an
// empty list rather than an error.
func (s *Session) History(ctx context.Context, chainID int64) ([]history.Record, error) {
	s.mu.Lock()
	if err := s.requireUnlockedLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	network := s.networks.ByChainID(chainID)
	if network == nil {
		s.mu.Unlock()
		return nil, walleterr.ErrNetworkNotFound
	}

	_, address, err := s.activeKeyLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	indexerURL := network.IndexerURL
	symbol := network.Symbol
	decimals := network.NativeDecimals
	s.mu.Unlock()

	if indexerURL == "" {
		return []history.Record{}, nil
	}

	client, err := history.NewClient(indexerURL, nil)
	if err != nil {
		s.logger.Error("history client for chain %d: %v", chainID, err)
		return []history.Record{}, nil
	}

	aggregator := history.NewAggregator(client, &history.Options{
		Cooldown:       time.Duration(s.cfg.Polling.IndexerCooldownMS) * time.Millisecond,
		NativeSymbol:   symbol,
		NativeDecimals: decimals,
		Logger:         s.logger,
	})

	return aggregator.Fetch(ctx, address), nil
}
