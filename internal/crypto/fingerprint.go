package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"securejoin/internal/domain"
)

// Fingerprint returns the uppercase hex SHA-256 digest over the X25519 and
// Ed25519 public keys, in that order.
func Fingerprint(keys domain.PublicKeys) domain.Fingerprint {
	h := sha256.New()
	h.Write(keys.X25519[:])
	h.Write(keys.Ed25519[:])
	return domain.Fingerprint(strings.ToUpper(hex.EncodeToString(h.Sum(nil))))
}
