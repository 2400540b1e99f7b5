package wallet

import (
	"context"
	"math/big"
	"sync"

	"github.com/web3twenty/3twenty-wallet/internal/cache"
	"github.com/web3twenty/3twenty-wallet/internal/chain/evm"
	"github.com/web3twenty/3twenty-wallet/internal/metrics"
	"github.com/web3twenty/3twenty-wallet/internal/registry"
	"github.com/web3twenty/3twenty-wallet/internal/swap"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// ChainClient is the full chain surface the session consumes, satisfied by
// the evm client and by test fakes.
type ChainClient interface {
	registry.ChainReader
	swap.RouterClient
}

// ClientSource resolves a chain client for a network.
type ClientSource interface {
	// ClientFor returns the client for the given chain id.
	ClientFor(chainID int64) (ChainClient, error)
}

// clientPool lazily dials one evm client per network and caches it for the
// process lifetime. RPC URLs resolve through the session so custom networks
// added after unlock are reachable too.
type clientPool struct {
	resolve func(chainID int64) (string, bool)

	mu      sync.Mutex
	clients map[int64]*evm.Client
}

func newClientPool(resolve func(chainID int64) (string, bool)) *clientPool {
	return &clientPool{resolve: resolve, clients: make(map[int64]*evm.Client)}
}

// ClientFor returns the cached client for a chain id, dialing on first use.
func (p *clientPool) ClientFor(chainID int64) (ChainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[chainID]; ok {
		return client, nil
	}

	rpcURL, ok := p.resolve(chainID)
	if !ok {
		return nil, walleterr.ErrNetworkNotFound
	}

	client, err := evm.NewClient(rpcURL, &evm.ClientOptions{ChainID: big.NewInt(chainID)})
	if err != nil {
		return nil, err
	}

	p.clients[chainID] = client
	return client, nil
}

// registrySource narrows a ClientSource to the registry's view, layering
// the token metadata cache over contract reads.
type registrySource struct {
	clients  ClientSource
	metadata *cache.Metadata
	persist  func()
}

func (r registrySource) ClientFor(chainID int64) (registry.ChainReader, error) {
	client, err := r.clients.ClientFor(chainID)
	if err != nil {
		return nil, err
	}
	if r.metadata == nil {
		return client, nil
	}
	return cachingReader{ChainReader: client, chainID: chainID, metadata: r.metadata, persist: r.persist}, nil
}

// cachingReader serves token metadata from the cache when present. Contract
// metadata is immutable, so cached entries never expire.
type cachingReader struct {
	registry.ChainReader

	chainID  int64
	metadata *cache.Metadata
	persist  func()
}

func (c cachingReader) FetchTokenMetadata(ctx context.Context, token string) (*evm.TokenMetadata, error) {
	if entry, ok := c.metadata.Get(c.chainID, token); ok {
		metrics.Global.RecordCacheHit()
		return &evm.TokenMetadata{Name: entry.Name, Symbol: entry.Symbol, Decimals: entry.Decimals}, nil
	}
	metrics.Global.RecordCacheMiss()

	meta, err := c.ChainReader.FetchTokenMetadata(ctx, token)
	if err != nil {
		return nil, err
	}

	c.metadata.Put(cache.Entry{
		ChainID:  c.chainID,
		Address:  token,
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
	})
	if c.persist != nil {
		c.persist()
	}

	return meta, nil
}
