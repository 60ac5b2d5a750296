package join_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securejoin/internal/crypto"
	"securejoin/internal/domain"
	"securejoin/internal/events"
	"securejoin/internal/invite"
	"securejoin/internal/protocol/securejoin"
	"securejoin/internal/relay"
	"securejoin/internal/services/identity"
	"securejoin/internal/services/join"
	"securejoin/internal/services/message"
	"securejoin/internal/services/verify"
	"securejoin/internal/store"
)

const pass = "Correct-Horse-42"

// node is one account with the full local stack.
type node struct {
	addr     domain.Username
	id       domain.Identity
	fp       domain.Fingerprint
	msgs     *message.Service
	join     *join.Service
	chats    *store.ChatFileStore
	contacts *store.ContactFileStore
	peers    *store.PeerStateFileStore
	events   <-chan domain.Event
}

func newNode(t *testing.T, addr domain.Username, rc domain.RelayClient) *node {
	t.Helper()
	dir := t.TempDir()

	ids := identity.New(store.NewIdentityFileStore(dir))
	_, _, err := ids.GenerateIdentity(pass)
	require.NoError(t, err)
	self, err := ids.Unlock(pass)
	require.NoError(t, err)

	hs, err := store.OpenHandshakeBoltStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hs.Close() })

	n := &node{
		addr:     addr,
		id:       self.Identity(),
		chats:    store.NewChatFileStore(dir),
		contacts: store.NewContactFileStore(dir),
		peers:    store.NewPeerStateFileStore(dir),
	}
	n.fp, err = self.SelfFingerprint(context.Background())
	require.NoError(t, err)
	n.msgs = message.New(n.id, addr, n.chats, n.contacts, n.peers, rc)

	bus := events.NewBus()
	ch, cancel := bus.Subscribe()
	t.Cleanup(cancel)
	n.events = ch

	n.join = join.New(&securejoin.Deps{
		Store:      hs,
		Verifier:   verify.New(n.contacts, n.peers),
		PeerStates: n.peers,
		Contacts:   n.contacts,
		Chats:      n.chats,
		Sender:     n.msgs,
		Self:       self,
		Events:     bus,
		Now:        time.Now,
	})
	return n
}

func (n *node) chatWith(t *testing.T, addr domain.Username) (domain.ContactID, domain.ChatID) {
	t.Helper()
	ctx := context.Background()
	cid, err := n.contacts.LookupOrCreateContact(ctx, addr, "", domain.OriginIncomingUnknown)
	require.NoError(t, err)
	chat, err := n.chats.CreateChatForContact(ctx, cid)
	require.NoError(t, err)
	return cid, chat
}

func (n *node) receive(t *testing.T) []domain.ReceivedMessage {
	t.Helper()
	msgs, err := n.msgs.ReceiveMessages(context.Background(), 0)
	require.NoError(t, err)
	return msgs
}

func (n *node) drainEvents() []domain.Event {
	var out []domain.Event
	for {
		select {
		case ev := <-n.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// inviterSend plays the inviter's part by sending a Secure-Join step.
func inviterSend(t *testing.T, alice *node, chat domain.ChatID, tag string) {
	t.Helper()
	require.NoError(t, alice.msgs.SendMessage(context.Background(), chat, domain.OutgoingMessage{
		Text:          "Secure-Join: " + tag,
		Headers:       map[string]string{domain.HeaderSecureJoin: tag},
		Hidden:        true,
		GuaranteeE2EE: true,
	}))
}

func inviteCode(alice *node, fp domain.Fingerprint) string {
	return invite.Format(invite.Parsed{
		Fingerprint:  fp,
		Addr:         alice.addr,
		Name:         "Alice",
		InviteNumber: "inv-123",
		AuthCode:     "auth-456",
	})
}

func TestJoin_FullHandshake(t *testing.T) {
	ctx := context.Background()
	rc := relay.Local{Box: relay.NewMemoryMailbox()}
	alice := newNode(t, "alice", rc)
	bob := newNode(t, "bob", rc)

	state, stage, err := bob.join.Join(ctx, inviteCode(alice, alice.fp))
	require.NoError(t, err)
	assert.Equal(t, securejoin.StageRequestSent, stage.Kind)
	assert.Equal(t, securejoin.StepAuthRequired, state.Next())

	// Alice sees a plaintext vc-request carrying the invite number.
	in := alice.receive(t)
	require.Len(t, in, 1)
	assert.False(t, in[0].WasEncrypted)
	assert.Equal(t, "vc-request", in[0].Headers[domain.HeaderSecureJoin])
	assert.Equal(t, "inv-123", in[0].Headers[domain.HeaderSecureJoinInvitenumber])

	_, aliceToBob := alice.chatWith(t, "bob")
	inviterSend(t, alice, aliceToBob, "vc-auth-required")

	for _, m := range bob.receive(t) {
		handled, err := bob.join.HandleMessage(ctx, m)
		require.NoError(t, err)
		assert.True(t, handled)
	}
	active, err := bob.join.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, securejoin.StepContactConfirm, active.Next())

	// Alice sees the encrypted request-with-auth with Bob's fingerprint.
	in = alice.receive(t)
	require.Len(t, in, 1)
	assert.True(t, in[0].WasEncrypted)
	assert.True(t, in[0].SignedBy(bob.fp))
	assert.Equal(t, "vc-request-with-auth", in[0].Headers[domain.HeaderSecureJoin])
	assert.Equal(t, "auth-456", in[0].Headers[domain.HeaderSecureJoinAuth])
	assert.Equal(t, bob.fp.String(), in[0].Headers[domain.HeaderSecureJoinFingerprint])

	inviterSend(t, alice, aliceToBob, "vc-contact-confirm")
	for _, m := range bob.receive(t) {
		handled, err := bob.join.HandleMessage(ctx, m)
		require.NoError(t, err)
		assert.True(t, handled)
	}

	active, err = bob.join.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	c, ok, err := bob.contacts.LoadContact(ctx, state.Invite().ContactID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.OriginSecurejoinJoined, c.Origin)
	assert.Equal(t, "Alice", c.Name)

	ps, ok, err := bob.peers.LoadPeerStateByFingerprint(ctx, alice.fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice.fp, ps.VerifiedKeyFingerprint)
	assert.Equal(t, bob.id.KeyID, ps.BackwardVerifiedKeyID)

	chat, _, err := bob.chats.LoadChat(ctx, state.ChatID())
	require.NoError(t, err)
	require.NotEmpty(t, chat.Info)
	assert.Equal(t, join.NoticeCompleted, chat.Info[len(chat.Info)-1].Text)

	var progress []int
	for _, ev := range bob.drainEvents() {
		if ev.Kind == domain.EventJoinerProgress {
			progress = append(progress, ev.Progress)
		}
	}
	assert.Equal(t, []int{domain.ProgressRequestWithAuthSent, domain.ProgressSucceeded}, progress)
}

func TestJoin_FastPathWhenKeyAlreadyKnown(t *testing.T) {
	ctx := context.Background()
	rc := relay.Local{Box: relay.NewMemoryMailbox()}
	alice := newNode(t, "alice", rc)
	bob := newNode(t, "bob", rc)

	// Bob has seen a signed message from Alice before.
	_, aliceToBob := alice.chatWith(t, "bob")
	require.NoError(t, alice.msgs.SendMessage(ctx, aliceToBob, domain.OutgoingMessage{Text: "hi"}))
	bob.receive(t)

	state, stage, err := bob.join.Join(ctx, inviteCode(alice, alice.fp))
	require.NoError(t, err)
	assert.Equal(t, securejoin.StageRequestWithAuthSent, stage.Kind)
	assert.Equal(t, securejoin.StepContactConfirm, state.Next())

	chat, _, err := bob.chats.LoadChat(ctx, state.ChatID())
	require.NoError(t, err)
	assert.NotZero(t, chat.ProtectedSince)

	in := alice.receive(t)
	require.Len(t, in, 1)
	assert.Equal(t, "vc-request-with-auth", in[0].Headers[domain.HeaderSecureJoin])
	assert.True(t, in[0].WasEncrypted)
}

func TestJoin_WrongFingerprintTerminates(t *testing.T) {
	ctx := context.Background()
	rc := relay.Local{Box: relay.NewMemoryMailbox()}
	alice := newNode(t, "alice", rc)
	bob := newNode(t, "bob", rc)
	eve := crypto.Fingerprint(domain.PublicKeys{X25519: domain.X25519Public{9}})

	state, _, err := bob.join.Join(ctx, inviteCode(alice, eve))
	require.NoError(t, err)
	alice.receive(t)

	_, aliceToBob := alice.chatWith(t, "bob")
	inviterSend(t, alice, aliceToBob, "vc-auth-required")
	for _, m := range bob.receive(t) {
		handled, err := bob.join.HandleMessage(ctx, m)
		require.NoError(t, err)
		assert.True(t, handled)
	}

	active, err := bob.join.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	chat, _, err := bob.chats.LoadChat(ctx, state.ChatID())
	require.NoError(t, err)
	require.NotEmpty(t, chat.Info)
	assert.Equal(t, "Secure-Join failed: "+securejoin.ReasonSignatureMissing, chat.Info[len(chat.Info)-1].Text)

	var reasons []string
	for _, ev := range bob.drainEvents() {
		if ev.Kind == domain.EventHandshakeTerminated {
			reasons = append(reasons, ev.Reason)
		}
	}
	assert.Equal(t, []string{securejoin.ReasonSignatureMissing}, reasons)

	// Nothing further goes to Alice.
	assert.Empty(t, alice.receive(t))
}

func TestJoin_NewInviteAbortsOld(t *testing.T) {
	ctx := context.Background()
	rc := relay.Local{Box: relay.NewMemoryMailbox()}
	alice := newNode(t, "alice", rc)
	carol := newNode(t, "carol", rc)
	bob := newNode(t, "bob", rc)

	first, _, err := bob.join.Join(ctx, inviteCode(alice, alice.fp))
	require.NoError(t, err)
	second, _, err := bob.join.Join(ctx, inviteCode(carol, carol.fp))
	require.NoError(t, err)

	active, err := bob.join.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID(), active.ID())

	chat, _, err := bob.chats.LoadChat(ctx, first.ChatID())
	require.NoError(t, err)
	require.Len(t, chat.Info, 1)
	assert.Equal(t, join.NoticeAborted, chat.Info[0].Text)

	var aborted []domain.ChatID
	for _, ev := range bob.drainEvents() {
		if ev.Kind == domain.EventHandshakeAborted {
			aborted = append(aborted, ev.Chat)
		}
	}
	assert.Equal(t, []domain.ChatID{first.ChatID()}, aborted)

	// A late auth-required from Alice reaches Carol's handshake, fails its
	// signature gate and ends it.
	alice.receive(t)
	_, aliceToBob := alice.chatWith(t, "bob")
	inviterSend(t, alice, aliceToBob, "vc-auth-required")
	for _, m := range bob.receive(t) {
		handled, err := bob.join.HandleMessage(ctx, m)
		require.NoError(t, err)
		assert.True(t, handled)
	}
	active, err = bob.join.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestHandleMessage_IgnoresOrdinaryMessages(t *testing.T) {
	ctx := context.Background()
	rc := relay.Local{Box: relay.NewMemoryMailbox()}
	bob := newNode(t, "bob", rc)

	handled, err := bob.join.HandleMessage(ctx, domain.ReceivedMessage{Text: "hi"})
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = bob.join.HandleMessage(ctx, domain.ReceivedMessage{
		Headers: map[string]string{domain.HeaderSecureJoin: "vc-auth-required"},
	})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestJoin_InvalidCode(t *testing.T) {
	bob := newNode(t, "bob", relay.Local{Box: relay.NewMemoryMailbox()})
	_, _, err := bob.join.Join(context.Background(), "not an invite")
	require.ErrorIs(t, err, invite.ErrInvalidInvite)
}
