package types

// Header names carried by Secure-Join handshake messages. They are matched
// byte for byte.
const (
	HeaderSecureJoin             = "Secure-Join"
	HeaderSecureJoinInvitenumber = "Secure-Join-Invitenumber"
	HeaderSecureJoinAuth         = "Secure-Join-Auth"
	HeaderSecureJoinFingerprint  = "Secure-Join-Fingerprint"
	HeaderSecureJoinGroup        = "Secure-Join-Group"
)

// OutgoingMessage is a message handed to a Sender for delivery into a chat.
type OutgoingMessage struct {
	Text    string            `json:"text"`
	Headers map[string]string `json:"headers,omitempty"`
	// Hidden messages are protocol plumbing and never shown in chat history.
	Hidden bool `json:"hidden,omitempty"`
	// ForcePlaintext disables encryption even if a peer key is known.
	ForcePlaintext bool `json:"force_plaintext,omitempty"`
	// GuaranteeE2EE makes sending fail unless the message can be encrypted.
	GuaranteeE2EE bool `json:"guarantee_e2ee,omitempty"`
}

// ReceivedMessage is a parsed incoming message.
type ReceivedMessage struct {
	ID           string
	From         Username
	Headers      map[string]string
	Text         string
	Timestamp    int64
	WasEncrypted bool
	// Signatures lists fingerprints of keys with a valid signature over the
	// message.
	Signatures []Fingerprint
	SenderKeys PublicKeys
}

// Header returns the named header value and whether it was present.
func (m ReceivedMessage) Header(name string) (string, bool) {
	v, ok := m.Headers[name]
	return v, ok
}

// SignedBy reports whether fp produced a valid signature on the message.
func (m ReceivedMessage) SignedBy(fp Fingerprint) bool {
	for _, s := range m.Signatures {
		if s == fp {
			return true
		}
	}
	return false
}

// Envelope is the wire-format message you post/get from the relay.
//
// When Encrypted is set, Payload is a ChaCha20-Poly1305 ciphertext of the
// JSON encoded headers and body and Nonce holds its nonce.
type Envelope struct {
	ID         string     `json:"id"`
	From       Username   `json:"from"`
	To         Username   `json:"to"`
	SenderKeys PublicKeys `json:"sender_keys"`
	Encrypted  bool       `json:"encrypted"`
	Nonce      []byte     `json:"nonce,omitempty"`
	Payload    []byte     `json:"payload"`
	Signature  []byte     `json:"signature"`
	Timestamp  int64      `json:"timestamp"`
}
