package types

// HandshakeRecord is the persisted form of the joiner handshake state.
//
// StepCode is the integer form of the next expected step; the mapping lives
// with the state machine, not here.
type HandshakeRecord struct {
	ID       int64
	Invite   Invite
	StepCode int64
	ChatID   ChatID
}
