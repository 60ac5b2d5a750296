package types

// EventKind enumerates events published to observers.
type EventKind int

const (
	EventContactsChanged EventKind = iota + 1
	EventJoinerProgress
	EventHandshakeAborted
	EventHandshakeTerminated
)

// String returns a short label for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventContactsChanged:
		return "contacts-changed"
	case EventJoinerProgress:
		return "joiner-progress"
	case EventHandshakeAborted:
		return "handshake-aborted"
	case EventHandshakeTerminated:
		return "handshake-terminated"
	default:
		return "unknown"
	}
}

// Joiner progress values, in permille.
const (
	ProgressRequestWithAuthSent = 400
	ProgressSucceeded           = 1000
)

// Event is a fire-and-forget notification.
type Event struct {
	Kind     EventKind
	Contact  ContactID
	Chat     ChatID
	Progress int
	Reason   string
}
