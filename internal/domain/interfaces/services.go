package interfaces

import (
	"context"

	domaintypes "securejoin/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects your identity keys.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// SelfKeys exposes the local key material the handshake needs.
type SelfKeys interface {
	SelfFingerprint(ctx context.Context) (domaintypes.Fingerprint, error)
	// KeyID returns the id of the key in use; zero or negative means none.
	KeyID(ctx context.Context) (int64, error)
}

// Verifier answers the cryptographic questions of the handshake.
type Verifier interface {
	// VerifySenderByFingerprint reports whether fp matches the key known for
	// contact, marking it verified if so.
	VerifySenderByFingerprint(
		ctx context.Context,
		fp domaintypes.Fingerprint,
		contact domaintypes.ContactID,
	) (bool, error)
	// EncryptedAndSigned reports whether msg was encrypted and carries a
	// valid signature by fp.
	EncryptedAndSigned(msg domaintypes.ReceivedMessage, fp domaintypes.Fingerprint) bool
}

// Sender delivers a message into a chat.
type Sender interface {
	SendMessage(ctx context.Context, chat domaintypes.ChatID, msg domaintypes.OutgoingMessage) error
}

// EventEmitter publishes events to observers without blocking.
type EventEmitter interface {
	Emit(ev domaintypes.Event)
}
