package join

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"securejoin/internal/domain"
	"securejoin/internal/invite"
	"securejoin/internal/protocol/securejoin"
)

// Notices posted into the inviter's chat.
const (
	NoticeAborted          = "Secure-Join aborted: a newer invite was scanned"
	NoticeCompleted        = "Secure-Join completed: contact verified"
	NoticeConfirmPlaintext = "Secure-Join: contact confirm message not encrypted"
	noticeFailedPrefix     = "Secure-Join failed: "
)

// Service ties invites, the handshake state machine and user notices
// together.
type Service struct {
	deps *securejoin.Deps
}

// New returns a join Service running handshakes against deps.
func New(deps *securejoin.Deps) *Service {
	return &Service{deps: deps}
}

// Join parses code, resolves the inviter to a contact and 1:1 chat and
// starts the handshake. Handshakes it aborted get a notice in their chat.
func (s *Service) Join(ctx context.Context, code string) (*securejoin.BobState, securejoin.Stage, error) {
	p, err := invite.Parse(code)
	if err != nil {
		return nil, securejoin.Stage{}, err
	}
	contact, err := s.deps.Contacts.LookupOrCreateContact(ctx, p.Addr, p.Name, domain.OriginUnhandledQrScan)
	if err != nil {
		return nil, securejoin.Stage{}, fmt.Errorf("join: resolve inviter: %w", err)
	}
	chat, err := s.deps.Chats.CreateChatForContact(ctx, contact)
	if err != nil {
		return nil, securejoin.Stage{}, fmt.Errorf("join: create chat: %w", err)
	}

	state, stage, aborted, err := securejoin.StartProtocol(ctx, s.deps, p.Bind(contact), chat)
	if err != nil {
		return nil, securejoin.Stage{}, err
	}
	for _, old := range aborted {
		if err := s.deps.Chats.AddInfo(ctx, old.ChatID(), NoticeAborted); err != nil {
			return nil, securejoin.Stage{}, fmt.Errorf("join: post abort notice: %w", err)
		}
		s.deps.Events.Emit(domain.Event{
			Kind:    domain.EventHandshakeAborted,
			Contact: old.Invite().ContactID(),
			Chat:    old.ChatID(),
		})
	}
	if stage.Kind == securejoin.StageRequestWithAuthSent {
		s.progress(contact, domain.ProgressRequestWithAuthSent)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Join",
		"inviter":  p.Addr,
		"group":    p.Group,
		"stage":    stage.String(),
	}).Info("Joining")
	return state, stage, nil
}

// HandleMessage feeds msg to the active handshake. It reports whether the
// message was consumed by the handshake.
func (s *Service) HandleMessage(ctx context.Context, msg domain.ReceivedMessage) (bool, error) {
	tag, ok := msg.Header(domain.HeaderSecureJoin)
	if !ok {
		return false, nil
	}
	state, err := securejoin.FromDB(ctx, s.deps)
	if err != nil {
		return false, err
	}
	if state == nil {
		logrus.WithFields(logrus.Fields{
			"function": "HandleMessage",
			"tag":      tag,
			"from":     msg.From,
		}).Debug("No handshake in progress")
		return false, nil
	}

	switch {
	case strings.HasSuffix(tag, "-auth-required"):
		return s.handleAuthRequired(ctx, state, msg)
	case tag == "vc-contact-confirm" || tag == "vg-member-added":
		return s.handleContactConfirm(ctx, state, msg, tag)
	default:
		return false, nil
	}
}

func (s *Service) handleAuthRequired(
	ctx context.Context,
	state *securejoin.BobState,
	msg domain.ReceivedMessage,
) (bool, error) {
	stage, err := state.HandleAuthRequired(ctx, msg)
	if err != nil || stage == nil {
		return false, err
	}
	contact := state.Invite().ContactID()
	switch stage.Kind {
	case securejoin.StageTerminated:
		if err := s.deps.Chats.AddInfo(ctx, state.ChatID(), noticeFailedPrefix+stage.Reason); err != nil {
			return true, err
		}
		s.deps.Events.Emit(domain.Event{
			Kind:    domain.EventHandshakeTerminated,
			Contact: contact,
			Chat:    state.ChatID(),
			Reason:  stage.Reason,
		})
	case securejoin.StageRequestWithAuthSent:
		s.progress(contact, domain.ProgressRequestWithAuthSent)
	}
	return true, nil
}

func (s *Service) handleContactConfirm(
	ctx context.Context,
	state *securejoin.BobState,
	msg domain.ReceivedMessage,
	tag string,
) (bool, error) {
	if !state.IsMsgExpected(tag) {
		return false, nil
	}
	if !s.deps.Verifier.EncryptedAndSigned(msg, state.Invite().Fingerprint()) {
		logrus.WithFields(logrus.Fields{
			"function": "handleContactConfirm",
			"tag":      tag,
			"from":     msg.From,
		}).Warn("Ignoring unprotected contact confirmation")
		return false, s.deps.Chats.AddInfo(ctx, state.ChatID(), NoticeConfirmPlaintext)
	}
	if err := state.StepContactConfirm(ctx); err != nil {
		return true, err
	}
	if state.InProgress() {
		return true, nil
	}
	if err := s.deps.Chats.AddInfo(ctx, state.ChatID(), NoticeCompleted); err != nil {
		return true, err
	}
	s.progress(state.Invite().ContactID(), domain.ProgressSucceeded)
	return true, nil
}

// Status returns the active handshake, or nil.
func (s *Service) Status(ctx context.Context) (*securejoin.BobState, error) {
	return securejoin.FromDB(ctx, s.deps)
}

func (s *Service) progress(contact domain.ContactID, permille int) {
	s.deps.Events.Emit(domain.Event{
		Kind:     domain.EventJoinerProgress,
		Contact:  contact,
		Progress: permille,
	})
}
