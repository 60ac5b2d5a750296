// Package message sends and receives signed, optionally encrypted messages.
//
// Outgoing messages are addressed through the chat they belong to and
// encrypted to the peer's known key unless they ask for plaintext.
// Incoming envelopes are verified, decrypted and used to learn the
// sender's current keys before being handed to the caller.
package message
