// Package chain provides chain and token definitions and common utilities
// shared by the balance, swap, and history services.
package chain

import (
	"strconv"
	"strings"

	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// NativeAddress is the sentinel token address for a network's native asset.
const NativeAddress = "native"

// Network is one configured chain.
type Network struct {
	// Name is the human-readable network name.
	Name string `json:"name"`

	// RPCURL is the JSON-RPC endpoint.
	RPCURL string `json:"rpc_url"`

	// ChainID uniquely identifies the network.
	ChainID int64 `json:"chain_id"`

	// Symbol is the native asset symbol.
	Symbol string `json:"symbol"`

	// NativeDecimals is the native asset precision (18 for EVM chains).
	NativeDecimals int `json:"native_decimals"`

	// Router is the DEX router contract address, empty if swaps are
	// unavailable on this network.
	Router string `json:"router,omitempty"`

	// IndexerURL is the transaction indexer base URL, empty if history is
	// unavailable on this network.
	IndexerURL string `json:"indexer_url,omitempty"`
}

// HasRouter reports whether the network supports swaps.
func (n *Network) HasRouter() bool {
	return n.Router != ""
}

// HasIndexer reports whether the network supports history queries.
func (n *Network) HasIndexer() bool {
	return n.IndexerURL != ""
}

// Token is one fungible asset on one network.
type Token struct {
	// Address is the token contract address, or NativeAddress for the
	// network's native asset.
	Address string `json:"address"`

	// Symbol is the token ticker symbol.
	Symbol string `json:"symbol"`

	// Name is the token display name.
	Name string `json:"name"`

	// Decimals is the token precision. Immutable once fetched: re-reading
	// metadata must never change it, or previously stored balances would
	// be reinterpreted.
	Decimals int `json:"decimals"`

	// Balance is the last-known balance as a decimal string.
	Balance string `json:"balance"`

	// Native marks the network's native asset.
	Native bool `json:"native"`

	// ChainID is the owning network's chain id.
	ChainID int64 `json:"chain_id"`
}

// IsNative reports whether the token is the network's native asset.
func (t *Token) IsNative() bool {
	return t.Native || strings.EqualFold(t.Address, NativeAddress)
}

// Key returns the token's identity (address, chain id), the uniqueness key
// within a token set. Addresses compare case-insensitively.
func (t *Token) Key() TokenKey {
	return TokenKey{Address: strings.ToLower(t.Address), ChainID: t.ChainID}
}

// TokenKey identifies a token within a token set.
type TokenKey struct {
	Address string
	ChainID int64
}

// NativeToken returns the native asset token for a network.
func NativeToken(n *Network) Token {
	return Token{
		Address:  NativeAddress,
		Symbol:   n.Symbol,
		Name:     n.Name,
		Decimals: n.NativeDecimals,
		Balance:  "0",
		Native:   true,
		ChainID:  n.ChainID,
	}
}

// Networks is an ordered set of networks keyed by chain id.
type Networks struct {
	list []Network
}

// NewNetworks builds a network set, rejecting duplicate chain ids.
func NewNetworks(networks []Network) (*Networks, error) {
	ns := &Networks{list: make([]Network, 0, len(networks))}
	for _, n := range networks {
		if err := ns.Add(n); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

// Add appends a network. Two networks with the same chain id is a
// configuration conflict.
func (ns *Networks) Add(n Network) error {
	if ns.ByChainID(n.ChainID) != nil {
		return walleterr.WithDetails(walleterr.ErrNetworkConflict, map[string]string{
			"chain_id": FormatChainID(n.ChainID),
			"name":     n.Name,
		})
	}
	ns.list = append(ns.list, n)
	return nil
}

// Remove deletes the network with the given chain id.
func (ns *Networks) Remove(chainID int64) error {
	for i := range ns.list {
		if ns.list[i].ChainID == chainID {
			ns.list = append(ns.list[:i], ns.list[i+1:]...)
			return nil
		}
	}
	return walleterr.ErrNetworkNotFound
}

// ByChainID returns the network with the given chain id, or nil.
func (ns *Networks) ByChainID(chainID int64) *Network {
	for i := range ns.list {
		if ns.list[i].ChainID == chainID {
			return &ns.list[i]
		}
	}
	return nil
}

// All returns a copy of the network list.
func (ns *Networks) All() []Network {
	out := make([]Network, len(ns.list))
	copy(out, ns.list)
	return out
}

// FormatChainID renders a chain id for error details.
func FormatChainID(id int64) string {
	return strconv.FormatInt(id, 10)
}
