package domain

import (
	interfaces "securejoin/internal/domain/interfaces"
	types "securejoin/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username          = types.Username
	Fingerprint       = types.Fingerprint
	ContactID         = types.ContactID
	ChatID            = types.ChatID
	GroupID           = types.GroupID
	Identity          = types.Identity
	PublicKeys        = types.PublicKeys
	X25519Public      = types.X25519Public
	X25519Private     = types.X25519Private
	Ed25519Public     = types.Ed25519Public
	Ed25519Private    = types.Ed25519Private
	Invite            = types.Invite
	ContactInvite     = types.ContactInvite
	GroupInvite       = types.GroupInvite
	PeerState         = types.PeerState
	EncryptPreference = types.EncryptPreference
	Contact           = types.Contact
	Origin            = types.Origin
	Chat              = types.Chat
	InfoLine          = types.InfoLine
	OutgoingMessage   = types.OutgoingMessage
	ReceivedMessage   = types.ReceivedMessage
	Envelope          = types.Envelope
	HandshakeRecord   = types.HandshakeRecord
	Event             = types.Event
	EventKind         = types.EventKind
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	SelfKeys        = interfaces.SelfKeys
	Verifier        = interfaces.Verifier
	Sender          = interfaces.Sender
	EventEmitter    = interfaces.EventEmitter
	RelayClient     = interfaces.RelayClient
	IdentityStore   = interfaces.IdentityStore
	PeerStateStore  = interfaces.PeerStateStore
	ContactStore    = interfaces.ContactStore
	ChatStore       = interfaces.ChatStore
	HandshakeTx     = interfaces.HandshakeTx
	HandshakeStore  = interfaces.HandshakeStore
)

// Frequently used constants re-exported from types.
const (
	OriginUnknown          = types.OriginUnknown
	OriginIncomingUnknown  = types.OriginIncomingUnknown
	OriginUnhandledQrScan  = types.OriginUnhandledQrScan
	OriginManuallyCreated  = types.OriginManuallyCreated
	OriginSecurejoinJoined = types.OriginSecurejoinJoined

	EncryptMutual = types.EncryptMutual

	HeaderSecureJoin             = types.HeaderSecureJoin
	HeaderSecureJoinInvitenumber = types.HeaderSecureJoinInvitenumber
	HeaderSecureJoinAuth         = types.HeaderSecureJoinAuth
	HeaderSecureJoinFingerprint  = types.HeaderSecureJoinFingerprint
	HeaderSecureJoinGroup        = types.HeaderSecureJoinGroup

	EventContactsChanged     = types.EventContactsChanged
	EventJoinerProgress      = types.EventJoinerProgress
	EventHandshakeAborted    = types.EventHandshakeAborted
	EventHandshakeTerminated = types.EventHandshakeTerminated

	ProgressRequestWithAuthSent = types.ProgressRequestWithAuthSent
	ProgressSucceeded           = types.ProgressSucceeded

	FingerprintHexLen = types.FingerprintHexLen
)

// ParseFingerprint normalises and validates a hex fingerprint.
var ParseFingerprint = types.ParseFingerprint
