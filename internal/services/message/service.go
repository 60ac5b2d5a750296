package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"securejoin/internal/crypto"
	"securejoin/internal/domain"
	"securejoin/internal/transport"
)

var (
	// ErrNoPeerKey is returned when a message must be encrypted but no key
	// is known for the recipient.
	ErrNoPeerKey = errors.New("no key known for peer; cannot guarantee encryption")
	// ErrUnknownChat is returned when sending into a chat that does not exist.
	ErrUnknownChat = errors.New("unknown chat")
)

// Service sends and receives messages over the relay.
//
// High-level flow:
//   - Send: resolve chat to contact address, pick the peer key unless the
//     message is force-plaintext, seal and post via the relay.
//   - Receive: fetch envelopes, open them, record the sender's keys and
//     contact, then ack processed messages.
type Service struct {
	self     domain.Identity
	me       domain.Username
	chats    domain.ChatStore
	contacts domain.ContactStore
	peers    domain.PeerStateStore
	relay    domain.RelayClient
	now      func() time.Time
}

// New constructs a message Service for the identity self, addressed as me.
func New(
	self domain.Identity,
	me domain.Username,
	chats domain.ChatStore,
	contacts domain.ContactStore,
	peers domain.PeerStateStore,
	relay domain.RelayClient,
) *Service {
	return &Service{
		self:     self,
		me:       me,
		chats:    chats,
		contacts: contacts,
		peers:    peers,
		relay:    relay,
		now:      time.Now,
	}
}

// SendMessage seals msg for the contact of chat and posts it.
//
// GuaranteeE2EE fails with ErrNoPeerKey rather than falling back to
// plaintext. ForcePlaintext never encrypts.
func (s *Service) SendMessage(ctx context.Context, chat domain.ChatID, msg domain.OutgoingMessage) error {
	c, ok, err := s.chats.LoadChat(ctx, chat)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownChat, chat)
	}
	contact, ok, err := s.contacts.LoadContact(ctx, c.Contact)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("chat %d: contact %d not found", chat, c.Contact)
	}

	var peer *domain.PublicKeys
	if !msg.ForcePlaintext {
		ps, found, err := s.peers.LoadPeerStateByAddr(ctx, contact.Addr)
		if err != nil {
			return err
		}
		if found {
			if key, ok := ps.EncryptionKey(); ok {
				peer = &key
			}
		}
	}
	if peer == nil && msg.GuaranteeE2EE {
		return fmt.Errorf("%w: %s", ErrNoPeerKey, contact.Addr)
	}

	env, err := transport.Seal(s.self, s.me, contact.Addr, msg, peer, s.now())
	if err != nil {
		return fmt.Errorf("seal message: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function":  "SendMessage",
		"to":        contact.Addr,
		"id":        env.ID,
		"encrypted": env.Encrypted,
		"hidden":    msg.Hidden,
	}).Debug("Sending message")
	return s.relay.SendMessage(ctx, env)
}

// ReceiveMessages fetches up to limit pending envelopes and opens them.
//
// Envelopes that are not for us or cannot be decrypted are dropped. Other
// failures stop processing and leave the remaining envelopes queued. Only
// the processed prefix is acknowledged.
func (s *Service) ReceiveMessages(ctx context.Context, limit int) ([]domain.ReceivedMessage, error) {
	envs, err := s.relay.FetchMessages(ctx, s.me, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReceivedMessage, 0, len(envs))
	processed := 0

	for i, env := range envs {
		msg, err := transport.Open(s.self, s.me, env)
		switch {
		case errors.Is(err, transport.ErrNotForUs), errors.Is(err, transport.ErrUndecryptable):
			logrus.WithFields(logrus.Fields{
				"function": "ReceiveMessages",
				"from":     env.From,
				"id":       env.ID,
				"error":    err,
			}).Warn("Dropping envelope")
			processed = i + 1
			continue
		case err != nil:
			return out, fmt.Errorf("open message from %q: %w", env.From, err)
		}

		if err := s.learnSender(ctx, msg); err != nil {
			return out, err
		}
		out = append(out, msg)
		processed = i + 1
	}

	if processed > 0 {
		if err := s.relay.AckMessages(ctx, s.me, processed); err != nil {
			return out, fmt.Errorf("ack %d messages: %w", processed, err)
		}
	}
	return out, nil
}

// learnSender records the sender as a contact and, for validly signed
// messages, its current public keys.
func (s *Service) learnSender(ctx context.Context, msg domain.ReceivedMessage) error {
	if _, err := s.contacts.LookupOrCreateContact(ctx, msg.From, "", domain.OriginIncomingUnknown); err != nil {
		return fmt.Errorf("record contact %q: %w", msg.From, err)
	}
	fp := crypto.Fingerprint(msg.SenderKeys)
	if !msg.SignedBy(fp) {
		return nil
	}

	ps, _, err := s.peers.LoadPeerStateByAddr(ctx, msg.From)
	if err != nil {
		return err
	}
	ps.Addr = msg.From
	if msg.Timestamp > ps.LastSeen {
		ps.LastSeen = msg.Timestamp
	}
	if ps.PublicKeyFingerprint != fp {
		if ps.PublicKeyFingerprint != "" {
			logrus.WithFields(logrus.Fields{
				"function": "learnSender",
				"peer":     msg.From,
				"old":      ps.PublicKeyFingerprint.Short(),
				"new":      fp.Short(),
			}).Info("Peer key changed")
		}
		ps.PublicKey = msg.SenderKeys
		ps.PublicKeyFingerprint = fp
	}
	if err := s.peers.SavePeerState(ctx, ps); err != nil {
		return fmt.Errorf("save peer state %q: %w", msg.From, err)
	}
	return nil
}

var _ domain.Sender = (*Service)(nil)
