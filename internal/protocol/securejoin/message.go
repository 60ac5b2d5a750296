package securejoin

import (
	"context"
	"fmt"

	"securejoin/internal/domain"
)

// Secure-Join header values. They are compared byte for byte.
const (
	tagContactRequest         = "vc-request"
	tagContactRequestWithAuth = "vc-request-with-auth"
	tagContactAuthRequired    = "vc-auth-required"
	tagContactConfirm         = "vc-contact-confirm"

	tagGroupRequest         = "vg-request"
	tagGroupRequestWithAuth = "vg-request-with-auth"
	tagGroupAuthRequired    = "vg-auth-required"
	tagGroupMemberAdded     = "vg-member-added"

	prefixContact = "vc-"
	prefixGroup   = "vg-"
)

// handshakeMsg identifies the messages the joiner sends.
type handshakeMsg int

const (
	msgRequest handshakeMsg = iota
	msgRequestWithAuth
)

// header returns the Secure-Join value for m under inv's variant.
func (m handshakeMsg) header(inv domain.Invite) string {
	switch inv.(type) {
	case domain.GroupInvite:
		if m == msgRequest {
			return tagGroupRequest
		}
		return tagGroupRequestWithAuth
	default:
		if m == msgRequest {
			return tagContactRequest
		}
		return tagContactRequestWithAuth
	}
}

// bodyText is only seen by users reading the raw message.
func (m handshakeMsg) bodyText(inv domain.Invite) string {
	return "Secure-Join: " + m.header(inv)
}

// buildHandshakeMessage assembles the outgoing message for m.
func buildHandshakeMessage(
	ctx context.Context,
	self domain.SelfKeys,
	inv domain.Invite,
	m handshakeMsg,
) (domain.OutgoingMessage, error) {
	msg := domain.OutgoingMessage{
		Text:    m.bodyText(inv),
		Hidden:  true,
		Headers: map[string]string{domain.HeaderSecureJoin: m.header(inv)},
	}

	switch m {
	case msgRequest:
		msg.Headers[domain.HeaderSecureJoinInvitenumber] = inv.InviteNumber()
		msg.ForcePlaintext = true
	case msgRequestWithAuth:
		msg.Headers[domain.HeaderSecureJoinAuth] = inv.AuthCode()
		msg.GuaranteeE2EE = true

		fp, err := self.SelfFingerprint(ctx)
		if err != nil {
			return domain.OutgoingMessage{}, fmt.Errorf("securejoin: load own fingerprint: %w", err)
		}
		msg.Headers[domain.HeaderSecureJoinFingerprint] = fp.String()

		// Older inviters still require the group id here.
		if g, ok := inv.(domain.GroupInvite); ok {
			msg.Headers[domain.HeaderSecureJoinGroup] = g.Group.String()
		}
	}
	return msg, nil
}

// sendHandshakeMessage builds m and hands it to the sender for chat.
func sendHandshakeMessage(
	ctx context.Context,
	deps *Deps,
	inv domain.Invite,
	chat domain.ChatID,
	m handshakeMsg,
) error {
	msg, err := buildHandshakeMessage(ctx, deps.Self, inv, m)
	if err != nil {
		return err
	}
	if err := deps.Sender.SendMessage(ctx, chat, msg); err != nil {
		return fmt.Errorf("securejoin: send %s: %w", m.header(inv), err)
	}
	return nil
}
