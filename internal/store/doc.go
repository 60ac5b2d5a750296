// Package store provides persistence for securejoin’s local state.
//
// It contains concrete implementations of the domain storage interfaces.
// The small, rarely written records (identity, peer states, contacts, chats)
// are serialised as JSON files under the user’s configured home directory,
// written atomically through a temp file and guarded by a per-file mutex.
//
// The joiner handshake state needs a real write transaction and has two
// backends to choose from:
//   - HandshakeBoltStore, a bbolt database (the default)
//   - HandshakeSQLStore, a SQLite table
//
// Both encode the scanned invite as CBOR.
package store
