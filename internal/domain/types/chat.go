package types

// Chat is a conversation with a single contact.
//
// ProtectedSince is the Unix time from which the chat is known to be
// end-to-end verified; zero means unprotected.
type Chat struct {
	ID             ChatID     `json:"id"`
	Contact        ContactID  `json:"contact"`
	ProtectedSince int64      `json:"protected_since,omitempty"`
	Info           []InfoLine `json:"info,omitempty"`
}

// InfoLine is a system notice shown inside a chat.
type InfoLine struct {
	Timestamp int64  `json:"timestamp"`
	Text      string `json:"text"`
}
