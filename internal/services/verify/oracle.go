package verify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"securejoin/internal/domain"
)

// Oracle checks fingerprints against the peer keys learned from messages.
type Oracle struct {
	contacts domain.ContactStore
	peers    domain.PeerStateStore
}

// New returns an Oracle over the given stores.
func New(contacts domain.ContactStore, peers domain.PeerStateStore) *Oracle {
	return &Oracle{contacts: contacts, peers: peers}
}

// VerifySenderByFingerprint looks up the key last seen from contact and, if
// its fingerprint equals fp, records it as verified by that contact.
//
// A missing contact or peer state is not an error; it simply cannot be
// verified yet.
func (o *Oracle) VerifySenderByFingerprint(
	ctx context.Context,
	fp domain.Fingerprint,
	contact domain.ContactID,
) (bool, error) {
	c, ok, err := o.contacts.LoadContact(ctx, contact)
	if err != nil {
		return false, fmt.Errorf("verify: load contact %d: %w", contact, err)
	}
	if !ok {
		return false, nil
	}
	ps, ok, err := o.peers.LoadPeerStateByAddr(ctx, c.Addr)
	if err != nil {
		return false, fmt.Errorf("verify: load peer state: %w", err)
	}
	if !ok {
		return false, nil
	}

	if ps.VerifiedKeyFingerprint == fp && ps.PublicKeyFingerprint == fp {
		return true, nil
	}
	if !ps.SetVerified(ps.PublicKey, fp, c.Addr) {
		logrus.WithFields(logrus.Fields{
			"function": "VerifySenderByFingerprint",
			"contact":  contact,
			"want":     fp.Short(),
			"have":     ps.PublicKeyFingerprint.Short(),
		}).Debug("Fingerprint does not match known key")
		return false, nil
	}
	ps.PreferEncrypt = domain.EncryptMutual
	if err := o.peers.SavePeerState(ctx, ps); err != nil {
		return false, fmt.Errorf("verify: save peer state: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function":    "VerifySenderByFingerprint",
		"contact":     contact,
		"fingerprint": fp.Short(),
	}).Info("Marked peer key as verified")
	return true, nil
}

// EncryptedAndSigned reports whether msg arrived encrypted with a valid
// signature by fp.
func (o *Oracle) EncryptedAndSigned(msg domain.ReceivedMessage, fp domain.Fingerprint) bool {
	return msg.WasEncrypted && msg.SignedBy(fp)
}

var _ domain.Verifier = (*Oracle)(nil)
