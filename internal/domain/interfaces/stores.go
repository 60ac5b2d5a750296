package interfaces

import (
	"context"

	domaintypes "securejoin/internal/domain/types"
)

// IdentityStore persists your long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// PeerStateStore persists what we know about peers' keys.
type PeerStateStore interface {
	LoadPeerStateByAddr(
		ctx context.Context,
		addr domaintypes.Username,
	) (domaintypes.PeerState, bool, error)
	// LoadPeerStateByFingerprint matches either the public or the verified
	// key fingerprint.
	LoadPeerStateByFingerprint(
		ctx context.Context,
		fp domaintypes.Fingerprint,
	) (domaintypes.PeerState, bool, error)
	SavePeerState(ctx context.Context, ps domaintypes.PeerState) error
}

// ContactStore is the address book.
type ContactStore interface {
	LoadContact(ctx context.Context, id domaintypes.ContactID) (domaintypes.Contact, bool, error)
	// LookupOrCreateContact returns the contact for addr, creating it with
	// origin if missing and raising its origin otherwise.
	LookupOrCreateContact(
		ctx context.Context,
		addr domaintypes.Username,
		name string,
		origin domaintypes.Origin,
	) (domaintypes.ContactID, error)
	// ScaleUpOrigin raises the origin of the given contacts; it never lowers it.
	ScaleUpOrigin(ctx context.Context, ids []domaintypes.ContactID, origin domaintypes.Origin) error
	ListContacts(ctx context.Context) ([]domaintypes.Contact, error)
}

// ChatStore holds 1:1 chats and their protection status.
type ChatStore interface {
	LoadChat(ctx context.Context, id domaintypes.ChatID) (domaintypes.Chat, bool, error)
	// CreateChatForContact returns the 1:1 chat with contact, creating it if
	// necessary.
	CreateChatForContact(ctx context.Context, contact domaintypes.ContactID) (domaintypes.ChatID, error)
	SetProtected(ctx context.Context, id domaintypes.ChatID, since int64) error
	AddInfo(ctx context.Context, id domaintypes.ChatID, text string) error
}

// HandshakeTx is the view of the handshake table inside a write transaction.
type HandshakeTx interface {
	// SetAllSteps overwrites the step of every row. Called first, it also
	// takes the write lock before any rows are read.
	SetAllSteps(code int64) error
	List() ([]domaintypes.HandshakeRecord, error)
	DeleteAll() error
	// Insert stores rec and returns its newly assigned ID; rec.ID is ignored.
	Insert(rec domaintypes.HandshakeRecord) (int64, error)
}

// HandshakeStore persists the single active joiner handshake.
type HandshakeStore interface {
	// Update runs fn inside one serialized write transaction. If fn returns
	// an error nothing it did is applied.
	Update(ctx context.Context, fn func(tx HandshakeTx) error) error
	// LoadActive returns the current record, if any.
	LoadActive(ctx context.Context) (domaintypes.HandshakeRecord, bool, error)
	SetStep(ctx context.Context, id int64, code int64) error
	Delete(ctx context.Context, id int64) error
	Close() error
}
