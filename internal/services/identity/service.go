package identity

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/sirupsen/logrus"

	"securejoin/internal/crypto"
	"securejoin/internal/domain"
	"securejoin/internal/store"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service manages identity key creation and access using a backing store.
//
// The identity contains:
//   - X25519 key pair for envelope encryption.
//   - Ed25519 key pair for signing handshake messages.
//
// Its fingerprint covers both public keys.
type Service struct {
	store domain.IdentityStore
}

// New returns an identity service backed by the given store.
func New(s domain.IdentityStore) *Service { return &Service{store: s} }

// GenerateIdentity creates a new identity, saves it encrypted with the passphrase,
// and returns the identity plus its fingerprint.
//
// If an identity readable with the same passphrase already exists, the new
// one gets the next key id so peers can tell the generations apart.
func (s *Service) GenerateIdentity(
	passphrase string,
) (domain.Identity, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Identity{}, "", ErrWeakPassphrase
	}

	keyID := int64(1)
	prev, err := s.store.LoadIdentity(passphrase)
	switch {
	case err == nil:
		keyID = prev.KeyID + 1
	case errors.Is(err, store.ErrNoIdentity), errors.Is(err, store.ErrWrongPassphrase):
	default:
		return domain.Identity{}, "", err
	}

	xPriv, xPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.Identity{}, "", err
	}
	edPriv, edPub, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.Identity{}, "", err
	}

	id := domain.Identity{
		KeyID:  keyID,
		XPub:   xPub,
		XPriv:  xPriv,
		EdPub:  edPub,
		EdPriv: edPriv,
	}
	if err := s.store.SaveIdentity(passphrase, id); err != nil {
		return domain.Identity{}, "", err
	}

	fp := crypto.Fingerprint(id.Public())
	logrus.WithFields(logrus.Fields{
		"function":    "GenerateIdentity",
		"key_id":      keyID,
		"fingerprint": fp.Short(),
	}).Info("Generated new identity")
	return id, fp, nil
}

// LoadIdentity decrypts and returns the local identity.
func (s *Service) LoadIdentity(passphrase string) (domain.Identity, error) {
	return s.store.LoadIdentity(passphrase)
}

// FingerprintIdentity returns the fingerprint of the local public keys.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	id, err := s.store.LoadIdentity(passphrase)
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(id.Public()), nil
}

// Unlock decrypts the identity once and keeps it in memory.
func (s *Service) Unlock(passphrase string) (*Unlocked, error) {
	id, err := s.store.LoadIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	return &Unlocked{id: id, fp: crypto.Fingerprint(id.Public())}, nil
}

// Unlocked is a decrypted identity.
type Unlocked struct {
	id domain.Identity
	fp domain.Fingerprint
}

// Identity returns the decrypted identity.
func (u *Unlocked) Identity() domain.Identity { return u.id }

// SelfFingerprint returns the fingerprint of the unlocked identity.
func (u *Unlocked) SelfFingerprint(context.Context) (domain.Fingerprint, error) {
	return u.fp, nil
}

// KeyID returns the key id of the unlocked identity.
func (u *Unlocked) KeyID(context.Context) (int64, error) {
	return u.id.KeyID, nil
}

// Wipe zeroes the private keys.
func (u *Unlocked) Wipe() {
	crypto.Wipe(u.id.XPriv[:], u.id.EdPriv[:])
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

var (
	_ domain.IdentityService = (*Service)(nil)
	_ domain.SelfKeys        = (*Unlocked)(nil)
)
