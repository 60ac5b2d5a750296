package types

// EncryptPreference mirrors the peer's advertised willingness to encrypt.
type EncryptPreference int

const (
	EncryptNoPreference EncryptPreference = iota
	EncryptMutual
	EncryptReset
)

// PeerState is what we know about a peer's keys.
//
// PublicKey is the last key seen on a signed message from Addr. VerifiedKey is
// only set once the key has been confirmed out of band, for example by a
// scanned invite fingerprint.
type PeerState struct {
	Addr          Username          `json:"addr"`
	LastSeen      int64             `json:"last_seen"`
	PreferEncrypt EncryptPreference `json:"prefer_encrypt"`

	PublicKey            PublicKeys  `json:"public_key"`
	PublicKeyFingerprint Fingerprint `json:"public_key_fingerprint,omitempty"`

	VerifiedKey            PublicKeys  `json:"verified_key"`
	VerifiedKeyFingerprint Fingerprint `json:"verified_key_fingerprint,omitempty"`
	Verifier               Username    `json:"verifier,omitempty"`

	// BackwardVerifiedKeyID is our own key id the peer has confirmed; zero
	// means unset.
	BackwardVerifiedKeyID int64 `json:"backward_verified_key_id,omitempty"`
}

// SetVerified records keys as verified by verifier. It is a no-op returning
// false if fp does not belong to keys' current public fingerprint.
func (p *PeerState) SetVerified(keys PublicKeys, fp Fingerprint, verifier Username) bool {
	if p.PublicKeyFingerprint != fp {
		return false
	}
	p.VerifiedKey = keys
	p.VerifiedKeyFingerprint = fp
	p.Verifier = verifier
	return true
}

// EncryptionKey returns the key to encrypt to, preferring the verified key.
func (p PeerState) EncryptionKey() (PublicKeys, bool) {
	if !p.VerifiedKey.IsZero() {
		return p.VerifiedKey, true
	}
	if !p.PublicKey.IsZero() {
		return p.PublicKey, true
	}
	return PublicKeys{}, false
}
