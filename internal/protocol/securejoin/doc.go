// Package securejoin runs the joiner side of the Secure-Join handshake.
//
// A joiner scans an invite, sends a request to the inviter and then walks
// through the auth-required and contact-confirm steps until the inviter's
// key is verified in both directions. BobState holds the persisted
// progress of that walk. At most one handshake is active per account;
// starting a new one aborts any other.
//
// The package performs no user interaction. Callers act on the returned
// Stage values and aborted states, for example by posting notices in the
// relevant chat.
package securejoin
