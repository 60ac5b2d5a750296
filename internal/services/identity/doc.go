// Package identity manages creation, encryption and loading of the local identity.
//
// It enforces passphrase policy, generates X25519 and Ed25519 key pairs,
// numbers each generation with a key id and persists them via the
// domain.IdentityStore. An unlocked identity serves as the handshake's
// view of its own keys.
package identity
