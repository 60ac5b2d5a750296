// Package transport turns outgoing messages into relay envelopes and back.
//
// Every envelope is signed with the sender's Ed25519 key over a
// length-prefixed encoding of all its fields. When the recipient's keys are
// known the headers and body are additionally encrypted with
// ChaCha20-Poly1305 under a key derived by HKDF-SHA256 from the X25519 shared
// secret of the two identities.
//
// Open never fails because of a bad signature: such messages are returned
// with an empty Signatures list and it is up to the caller to decide whether
// that matters. It does fail when an encrypted payload cannot be opened.
package transport
