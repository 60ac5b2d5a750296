package types

// Identity holds your long-term X25519 and Ed25519 keys.
//
// KeyID is a positive, locally assigned number that changes whenever the
// identity is regenerated. Peers record it as the backward-verified key.
type Identity struct {
	KeyID  int64          `json:"key_id"`
	XPub   X25519Public   `json:"xpub"`
	XPriv  X25519Private  `json:"xpriv"`
	EdPub  Ed25519Public  `json:"edpub"`
	EdPriv Ed25519Private `json:"edpriv"`
}

// Public returns the public keys of the identity.
func (id Identity) Public() PublicKeys {
	return PublicKeys{X25519: id.XPub, Ed25519: id.EdPub}
}
