package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"securejoin/internal/domain"
	"securejoin/internal/events"
	"securejoin/internal/protocol/securejoin"
	"securejoin/internal/relay"
	identitysvc "securejoin/internal/services/identity"
	joinsvc "securejoin/internal/services/join"
	messagesvc "securejoin/internal/services/message"
	verifysvc "securejoin/internal/services/verify"
	"securejoin/internal/store"
)

// ErrNoUsername is returned when the account has no relay address yet.
var ErrNoUsername = errors.New("no username configured; run init --username first")

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config     *Config
	Self       *identitysvc.Unlocked
	Handshakes domain.HandshakeStore
	Contacts   *store.ContactFileStore
	Chats      *store.ChatFileStore
	Peers      *store.PeerStateFileStore
	Relay      domain.RelayClient
	Messages   *messagesvc.Service
	Join       *joinsvc.Service
	Events     *events.Bus
	HTTP       *http.Client
}

// NewIdentityService returns the identity service for cfg's home.
func NewIdentityService(cfg *Config) *identitysvc.Service {
	return identitysvc.New(store.NewIdentityFileStore(cfg.Home))
}

// OpenHandshakeStore opens the handshake store selected by cfg.
func OpenHandshakeStore(cfg *Config) (domain.HandshakeStore, error) {
	switch cfg.StoreBackend {
	case BackendBolt:
		return store.OpenHandshakeBoltStore(cfg.Home)
	case BackendSQLite:
		return store.OpenHandshakeSQLStore(cfg.Home)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// NewWire unlocks the identity with passphrase and constructs the
// dependency graph from cfg. The caller must Close the result.
func NewWire(cfg *Config, passphrase string) (*Wire, error) {
	if cfg.Username == "" {
		return nil, ErrNoUsername
	}
	self, err := NewIdentityService(cfg).Unlock(passphrase)
	if err != nil {
		return nil, err
	}
	hs, err := OpenHandshakeStore(cfg)
	if err != nil {
		self.Wipe()
		return nil, err
	}

	contacts := store.NewContactFileStore(cfg.Home)
	chats := store.NewChatFileStore(cfg.Home)
	peers := store.NewPeerStateFileStore(cfg.Home)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout.Duration}
	rc := relay.NewHTTP(cfg.RelayURL, httpClient)

	me := domain.Username(cfg.Username)
	msgs := messagesvc.New(self.Identity(), me, chats, contacts, peers, rc)
	bus := events.NewBus()

	deps := &securejoin.Deps{
		Store:      hs,
		Verifier:   verifysvc.New(contacts, peers),
		PeerStates: peers,
		Contacts:   contacts,
		Chats:      chats,
		Sender:     msgs,
		Self:       self,
		Events:     bus,
		Now:        time.Now,
	}

	return &Wire{
		Config:     cfg,
		Self:       self,
		Handshakes: hs,
		Contacts:   contacts,
		Chats:      chats,
		Peers:      peers,
		Relay:      rc,
		Messages:   msgs,
		Join:       joinsvc.New(deps),
		Events:     bus,
		HTTP:       httpClient,
	}, nil
}

// Close releases the handshake store and wipes the unlocked keys.
func (w *Wire) Close() error {
	w.Events.Close()
	w.Self.Wipe()
	return w.Handshakes.Close()
}
