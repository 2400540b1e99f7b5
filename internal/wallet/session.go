// Package wallet is the engine core: it owns the unlocked session state and
// coordinates the vault, account manager, token registry, swap orchestrator,
// and history aggregator behind one mutex.
package wallet

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/account"
	"github.com/web3twenty/3twenty-wallet/internal/cache"
	"github.com/web3twenty/3twenty-wallet/internal/chain"
	"github.com/web3twenty/3twenty-wallet/internal/config"
	"github.com/web3twenty/3twenty-wallet/internal/registry"
	"github.com/web3twenty/3twenty-wallet/internal/swap"
	"github.com/web3twenty/3twenty-wallet/internal/vault"
	walleterr "github.com/web3twenty/3twenty-wallet/pkg/errors"
)

// LogWriter is the logging interface the session writes to.
type LogWriter interface {
	// Debug writes a debug-level message.
	Debug(format string, args ...any)

	// Error writes an error-level message.
	Error(format string, args ...any)
}

// Options configures a Session.
type Options struct {
	// Clients overrides the chain client source, used by tests to avoid
	// network access.
	Clients ClientSource

	// Logger receives session diagnostics. Nil discards them.
	Logger LogWriter
}

// Session is one unlocked wallet. All mutating operations re-seal and
// persist the vault before returning, so a crash never loses state. Safe
// for concurrent use.
type Session struct {
	cfg       *config.Config
	store     *vault.Store
	clients   ClientSource
	logger    LogWriter
	metadata  *cache.Metadata
	metaStore *cache.Store

	mu             sync.Mutex
	unlocked       bool
	password       []byte
	accounts       []account.Account
	activeID       string
	networks       *chain.Networks
	customNetworks []chain.Network
	registry       *registry.Registry
	orchestrators  map[int64]*swap.Orchestrator
}

// NewSession creates a locked session over the configured vault path.
func NewSession(cfg *config.Config, opts *Options) (*Session, error) {
	s := &Session{
		cfg:           cfg,
		store:         vault.NewStore(cfg.VaultPath()),
		orchestrators: make(map[int64]*swap.Orchestrator),
	}
	if opts != nil {
		s.clients = opts.Clients
		s.logger = opts.Logger
	}
	if s.clients == nil {
		s.clients = newClientPool(s.resolveRPC)
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}

	s.metaStore = cache.NewStore(cfg.CachePath())
	metadata, err := s.metaStore.Load()
	if err != nil {
		// A corrupt cache is quarantined on load; start empty.
		s.logger.Error("loading metadata cache: %v", err)
	}
	if metadata == nil {
		metadata = cache.NewMetadata()
	}
	s.metadata = metadata

	return s, nil
}

// saveMetadataCache persists the metadata cache. Failures are logged only;
// the cache is a convenience, not state.
func (s *Session) saveMetadataCache() {
	if err := s.metaStore.Save(s.metadata); err != nil {
		s.logger.Error("saving metadata cache: %v", err)
	}
}

// Exists reports whether a vault file is present.
func (s *Session) Exists() (bool, error) {
	return s.store.Exists()
}

// Create initializes a new vault with one generated account and unlocks it.
func (s *Session) Create(password, accountName string, mnemonicWords int) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.store.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, walleterr.WithDetails(walleterr.ErrVaultExists, map[string]string{
			"path": s.store.Path(),
		})
	}

	if mnemonicWords == 0 {
		mnemonicWords = 12
	}
	acct, err := account.GenerateWithWords(accountName, mnemonicWords)
	if err != nil {
		return nil, err
	}

	s.password = []byte(password)
	s.accounts = []account.Account{*acct}
	s.activeID = acct.ID
	s.customNetworks = nil
	s.unlocked = true

	if err := s.rebuildLocked(); err != nil {
		s.lockLocked()
		return nil, err
	}
	if err := s.persistLocked(); err != nil {
		s.lockLocked()
		return nil, err
	}

	s.logger.Debug("vault created at %s", s.store.Path())
	return acct, nil
}

// Unlock opens the vault. Any decryption failure reports the same generic
// error so the reason cannot be probed.
func (s *Session) Unlock(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.store.Load()
	if err != nil {
		return err
	}

	bundle, err := vault.Open(blob, password)
	if err != nil {
		return err
	}

	// Addresses come from the keys, never from the stored bundle alone.
	for i := range bundle.Accounts {
		derived, derr := account.DeriveAddress(bundle.Accounts[i].PrivateKey)
		if derr != nil {
			return walleterr.ErrDecryptionFailed
		}
		bundle.Accounts[i].Address = derived
	}

	s.password = []byte(password)
	s.accounts = bundle.Accounts
	s.customNetworks = bundle.CustomNetworks
	s.unlocked = true
	if len(s.accounts) > 0 {
		s.activeID = s.accounts[0].ID
	}

	if err := s.rebuildLocked(); err != nil {
		s.lockLocked()
		return err
	}

	for _, t := range bundle.CustomTokens {
		if err := s.registry.Add(t); err != nil {
			s.logger.Error("skipping persisted token %s: %v", t.Symbol, err)
		}
	}

	s.logger.Debug("vault unlocked with %d accounts", len(s.accounts))
	return nil
}

// Lock wipes the in-memory secrets and returns the session to the locked
// state. The vault file is untouched.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked()
}

func (s *Session) lockLocked() {
	for i := range s.password {
		s.password[i] = 0
	}
	s.password = nil
	for i := range s.accounts {
		s.accounts[i] = account.Account{}
	}
	s.accounts = nil
	s.activeID = ""
	s.networks = nil
	s.customNetworks = nil
	s.registry = nil
	s.orchestrators = make(map[int64]*swap.Orchestrator)
	s.unlocked = false
}

// Unlocked reports whether the session holds an open vault.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// rebuildLocked reconstructs the network set and token registry from
// configuration plus the session's custom entries. Defaults always come
// from configuration; only user additions live in the vault.
func (s *Session) rebuildLocked() error {
	networks := make([]chain.Network, 0, len(s.cfg.Networks)+len(s.customNetworks))
	for _, nc := range s.cfg.Networks {
		networks = append(networks, nc.Network())
	}
	networks = append(networks, s.customNetworks...)

	set, err := chain.NewNetworks(networks)
	if err != nil {
		return err
	}
	s.networks = set

	var seed []chain.Token
	for _, n := range set.All() {
		native := chain.NativeToken(&n)
		seed = append(seed, native)
	}
	for _, nc := range s.cfg.Networks {
		seed = append(seed, nc.DefaultTokens()...)
	}

	source := registrySource{clients: s.clients, metadata: s.metadata, persist: s.saveMetadataCache}
	s.registry = registry.New(source, seed, &registry.Options{
		BalanceDelay: time.Duration(s.cfg.Polling.BalanceDelayMS) * time.Millisecond,
		Logger:       s.logger,
	})
	return nil
}

// persistLocked re-seals the bundle and replaces the vault file.
func (s *Session) persistLocked() error {
	bundle := &vault.Bundle{
		Accounts:       s.accounts,
		CustomNetworks: s.customNetworks,
	}
	if s.registry != nil {
		bundle.CustomTokens = s.registry.CustomTokens()
	}

	blob, err := vault.Seal(bundle, string(s.password))
	if err != nil {
		return err
	}
	return s.store.Save(blob)
}

// requireUnlockedLocked guards mutating operations.
func (s *Session) requireUnlockedLocked() error {
	if !s.unlocked {
		return walleterr.ErrVaultLocked
	}
	return nil
}

// Accounts returns the session's accounts without private material.
func (s *Session) Accounts() []account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		a.PrivateKey = ""
		a.Mnemonic = ""
		out = append(out, a)
	}
	return out
}

// ActiveAccount returns the selected account without private material.
func (s *Session) ActiveAccount() (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	a, err := s.findLocked(s.activeID)
	if err != nil {
		return nil, err
	}

	public := *a
	public.PrivateKey = ""
	public.Mnemonic = ""
	return &public, nil
}

// SelectAccount makes an account the active one.
func (s *Session) SelectAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}
	if _, err := s.findLocked(id); err != nil {
		return err
	}
	s.activeID = id
	return nil
}

// AddAccount generates a fresh account and persists it.
func (s *Session) AddAccount(name string, mnemonicWords int) (*account.Account, error) {
	if mnemonicWords == 0 {
		mnemonicWords = 12
	}
	return s.addAccount(func() (*account.Account, error) {
		return account.GenerateWithWords(name, mnemonicWords)
	})
}

// ImportPhrase adds an account recovered from a mnemonic phrase.
func (s *Session) ImportPhrase(name, phrase string) (*account.Account, error) {
	return s.addAccount(func() (*account.Account, error) {
		return account.ImportFromPhrase(name, phrase)
	})
}

// ImportKey adds an account from a raw private key.
func (s *Session) ImportKey(name, hexKey string) (*account.Account, error) {
	return s.addAccount(func() (*account.Account, error) {
		return account.ImportFromKey(name, hexKey)
	})
}

func (s *Session) addAccount(build func() (*account.Account, error)) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	acct, err := build()
	if err != nil {
		return nil, err
	}

	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Address, acct.Address) {
			return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
				"address": acct.Address,
				"reason":  "account already present",
			})
		}
	}

	s.accounts = append(s.accounts, *acct)
	if err := s.persistLocked(); err != nil {
		s.accounts = s.accounts[:len(s.accounts)-1]
		return nil, err
	}

	public := *acct
	public.PrivateKey = ""
	public.Mnemonic = ""
	return &public, nil
}

// RemoveAccount deletes an account. The last account cannot be removed.
func (s *Session) RemoveAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}
	if len(s.accounts) == 1 {
		return walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"reason": "cannot remove the last account",
		})
	}

	for i := range s.accounts {
		if s.accounts[i].ID != id {
			continue
		}
		removed := s.accounts[i]
		s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
		if err := s.persistLocked(); err != nil {
			s.accounts = append(s.accounts, removed)
			return err
		}
		if s.activeID == id {
			s.activeID = s.accounts[0].ID
		}
		return nil
	}

	return walleterr.WithDetails(walleterr.ErrAccountNotFound, map[string]string{"id": id})
}

// RenameAccount changes an account's display name.
func (s *Session) RenameAccount(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}

	a, err := s.findLocked(id)
	if err != nil {
		return err
	}

	previous := a.Name
	a.Name = name
	if err := s.persistLocked(); err != nil {
		a.Name = previous
		return err
	}
	return nil
}

// findLocked returns the stored account with private material intact.
func (s *Session) findLocked(id string) (*account.Account, error) {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			return &s.accounts[i], nil
		}
	}
	return nil, walleterr.WithDetails(walleterr.ErrAccountNotFound, map[string]string{"id": id})
}

// activeKeyLocked returns the active account's signing key.
func (s *Session) activeKeyLocked() (string, string, error) {
	a, err := s.findLocked(s.activeID)
	if err != nil {
		return "", "", err
	}
	return a.PrivateKey, a.Address, nil
}

// Networks returns all configured and custom networks.
func (s *Session) Networks() ([]chain.Network, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	return s.networks.All(), nil
}

// AddNetwork tracks a custom network and persists it.
func (s *Session) AddNetwork(n chain.Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}
	if err := s.networks.Add(n); err != nil {
		return err
	}

	s.customNetworks = append(s.customNetworks, n)
	if err := s.persistLocked(); err != nil {
		s.customNetworks = s.customNetworks[:len(s.customNetworks)-1]
		_ = s.networks.Remove(n.ChainID)
		return err
	}
	return nil
}

// RemoveNetwork untracks a custom network. Configured defaults stay.
func (s *Session) RemoveNetwork(chainID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}

	for i, n := range s.customNetworks {
		if n.ChainID != chainID {
			continue
		}
		s.customNetworks = append(s.customNetworks[:i], s.customNetworks[i+1:]...)
		if err := s.persistLocked(); err != nil {
			s.customNetworks = append(s.customNetworks, n)
			return err
		}
		return s.networks.Remove(chainID)
	}

	if s.networks.ByChainID(chainID) != nil {
		return walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"chain_id": chain.FormatChainID(chainID),
			"reason":   "built-in networks cannot be removed",
		})
	}
	return walleterr.ErrNetworkNotFound
}

// Tokens returns the tracked tokens for a network.
func (s *Session) Tokens(chainID int64) ([]chain.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	return s.registry.Tokens(chainID), nil
}

// LookupToken validates a candidate token contract without tracking it.
func (s *Session) LookupToken(ctx context.Context, chainID int64, address string) (*chain.Token, error) {
	reg, err := s.registryRef()
	if err != nil {
		return nil, err
	}
	return reg.Lookup(ctx, chainID, address)
}

// AddToken validates and tracks a token contract, persisting it.
func (s *Session) AddToken(ctx context.Context, chainID int64, address string) (*chain.Token, error) {
	reg, err := s.registryRef()
	if err != nil {
		return nil, err
	}

	token, err := reg.Lookup(ctx, chainID, address)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	if err := s.registry.Add(*token); err != nil {
		return nil, err
	}
	if err := s.persistLocked(); err != nil {
		_ = s.registry.Remove(chainID, address)
		return nil, err
	}
	return token, nil
}

// RemoveToken untracks a custom token and persists the change.
func (s *Session) RemoveToken(chainID int64, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}
	if err := s.registry.Remove(chainID, address); err != nil {
		return err
	}
	return s.persistLocked()
}

// RefreshBalances re-fetches balances for the active account on a network.
func (s *Session) RefreshBalances(ctx context.Context, chainID int64) ([]chain.Token, error) {
	s.mu.Lock()
	if err := s.requireUnlockedLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	reg := s.registry
	_, address, err := s.activeKeyLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return reg.Refresh(ctx, chainID, address)
}

// registryRef grabs the registry without holding the lock across I/O.
func (s *Session) registryRef() (*registry.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	return s.registry, nil
}

// resolveRPC maps a chain id to its RPC endpoint, consulting the unlocked
// network set first so custom networks resolve too.
func (s *Session) resolveRPC(chainID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.networks != nil {
		if n := s.networks.ByChainID(chainID); n != nil {
			return n.RPCURL, true
		}
	}
	if nc := s.cfg.Network(chainID); nc != nil {
		return nc.RPC, true
	}
	return "", false
}

// nopLogger discards all messages.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
