package types

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Username represents a relay-registered address.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// Fingerprint is the uppercase hex digest identifying a peer's public keys.
type Fingerprint string

// FingerprintHexLen is the length of a hex encoded SHA-256 fingerprint.
const FingerprintHexLen = 64

// ErrBadFingerprint is returned by ParseFingerprint for malformed input.
var ErrBadFingerprint = errors.New("malformed fingerprint")

// ParseFingerprint normalises s (spaces and colons removed, uppercased) and
// checks that it is a full-length hex digest.
func ParseFingerprint(s string) (Fingerprint, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '\t', '\n':
			return -1
		}
		return r
	}, s)
	s = strings.ToUpper(s)
	if len(s) != FingerprintHexLen {
		return "", ErrBadFingerprint
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", ErrBadFingerprint
	}
	return Fingerprint(s), nil
}

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Short returns the first 16 hex characters, enough for log lines.
func (f Fingerprint) Short() string {
	if len(f) <= 16 {
		return string(f)
	}
	return string(f[:16])
}

// ContactID identifies a row in the contact store.
type ContactID int64

// ChatID identifies a 1:1 or group chat.
type ChatID int64

// GroupID is the opaque group identifier carried in group invites.
type GroupID string

// String returns the string form of the group identifier.
func (id GroupID) String() string { return string(id) }
