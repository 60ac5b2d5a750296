package transport

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"securejoin/internal/crypto"
	"securejoin/internal/domain"
)

const (
	signatureContext = "securejoin/envelope/v1"
	kdfInfo          = "securejoin/envelope-key/v1"
)

var (
	// ErrUndecryptable is returned when an encrypted payload fails to open.
	ErrUndecryptable = errors.New("envelope: cannot decrypt payload")
	// ErrNotForUs is returned when the envelope is addressed to someone else.
	ErrNotForUs = errors.New("envelope: wrong recipient")
)

type payload struct {
	Headers map[string]string `json:"headers,omitempty"`
	Text    string            `json:"text"`
}

// Seal builds a signed envelope carrying msg from self to the address to.
// When peer is non-nil the payload is encrypted to those keys.
func Seal(
	self domain.Identity,
	from, to domain.Username,
	msg domain.OutgoingMessage,
	peer *domain.PublicKeys,
	now time.Time,
) (domain.Envelope, error) {
	raw, err := json.Marshal(payload{Headers: msg.Headers, Text: msg.Text})
	if err != nil {
		return domain.Envelope{}, err
	}
	env := domain.Envelope{
		ID:         uuid.NewString(),
		From:       from,
		To:         to,
		SenderKeys: self.Public(),
		Payload:    raw,
		Timestamp:  now.Unix(),
	}
	if peer != nil {
		key, err := envelopeKey(self.XPriv, peer.X25519, env.ID)
		if err != nil {
			return domain.Envelope{}, err
		}
		defer crypto.Wipe(key)
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return domain.Envelope{}, err
		}
		nonce := make([]byte, aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return domain.Envelope{}, err
		}
		env.Encrypted = true
		env.Nonce = nonce
		env.Payload = aead.Seal(nil, nonce, raw, associatedData(env))
		crypto.Wipe(raw)
	}
	env.Signature = crypto.SignEd25519(self.EdPriv, signedBytes(env))
	return env, nil
}

// Open verifies and, if needed, decrypts env for self (addressed as me).
func Open(self domain.Identity, me domain.Username, env domain.Envelope) (domain.ReceivedMessage, error) {
	if env.To != me {
		return domain.ReceivedMessage{}, fmt.Errorf("%w: %q", ErrNotForUs, env.To)
	}
	msg := domain.ReceivedMessage{
		ID:           env.ID,
		From:         env.From,
		Timestamp:    env.Timestamp,
		WasEncrypted: env.Encrypted,
		SenderKeys:   env.SenderKeys,
	}
	if !env.SenderKeys.IsZero() && crypto.VerifyEd25519(env.SenderKeys.Ed25519, signedBytes(env), env.Signature) {
		msg.Signatures = []domain.Fingerprint{crypto.Fingerprint(env.SenderKeys)}
	}

	raw := env.Payload
	if env.Encrypted {
		key, err := envelopeKey(self.XPriv, env.SenderKeys.X25519, env.ID)
		if err != nil {
			return domain.ReceivedMessage{}, fmt.Errorf("%w: %v", ErrUndecryptable, err)
		}
		defer crypto.Wipe(key)
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return domain.ReceivedMessage{}, err
		}
		if len(env.Nonce) != aead.NonceSize() {
			return domain.ReceivedMessage{}, ErrUndecryptable
		}
		raw, err = aead.Open(nil, env.Nonce, env.Payload, associatedData(env))
		if err != nil {
			return domain.ReceivedMessage{}, ErrUndecryptable
		}
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.ReceivedMessage{}, fmt.Errorf("envelope: decode payload: %w", err)
	}
	msg.Headers = p.Headers
	msg.Text = p.Text
	return msg, nil
}

// envelopeKey derives the per-envelope AEAD key.
func envelopeKey(priv domain.X25519Private, peer domain.X25519Public, id string) ([]byte, error) {
	shared, err := crypto.DH(priv, peer)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(shared[:])
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, shared[:], []byte(id), []byte(kdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

func associatedData(env domain.Envelope) []byte {
	var b []byte
	b = appendField(b, []byte(env.ID))
	b = appendField(b, []byte(env.From))
	b = appendField(b, []byte(env.To))
	b = appendField(b, env.SenderKeys.X25519[:])
	b = appendField(b, env.SenderKeys.Ed25519[:])
	return b
}

// signedBytes is the canonical encoding covered by the signature.
func signedBytes(env domain.Envelope) []byte {
	b := appendField(nil, []byte(signatureContext))
	b = append(b, associatedData(env)...)
	enc := byte(0)
	if env.Encrypted {
		enc = 1
	}
	b = appendField(b, []byte{enc})
	b = appendField(b, env.Nonce)
	b = appendField(b, env.Payload)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(env.Timestamp))
	return appendField(b, ts[:])
}

func appendField(b, field []byte) []byte {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(field)))
	b = append(b, n[:]...)
	return append(b, field...)
}
