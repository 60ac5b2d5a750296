package securejoin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"securejoin/internal/domain"
)

// Deps are the collaborators a handshake runs against.
type Deps struct {
	Store      domain.HandshakeStore
	Verifier   domain.Verifier
	PeerStates domain.PeerStateStore
	Contacts   domain.ContactStore
	Chats      domain.ChatStore
	Sender     domain.Sender
	Self       domain.SelfKeys
	Events     domain.EventEmitter
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// BobState is the joiner's progress through one handshake.
//
// Once Terminated or Completed is reached the stored record is already
// deleted and the value only serves to ignore further messages.
type BobState struct {
	id     int64
	invite domain.Invite
	next   Step
	chatID domain.ChatID
	deps   *Deps
}

// ID returns the record id.
func (b *BobState) ID() int64 { return b.id }

// Invite returns the invite this handshake pursues.
func (b *BobState) Invite() domain.Invite { return b.invite }

// Next returns the step expected next.
func (b *BobState) Next() Step { return b.next }

// ChatID returns the 1:1 chat with the inviter.
func (b *BobState) ChatID() domain.ChatID { return b.chatID }

// StartProtocol sends the first handshake message for invite and stores a
// new BobState, aborting any handshake still in progress.
//
// chat must be the 1:1 chat with the inviter; it carries the handshake and
// any error notices. If the invite fingerprint is already verified for the
// inviter the auth-required round trip is skipped.
func StartProtocol(
	ctx context.Context,
	deps *Deps,
	invite domain.Invite,
	chat domain.ChatID,
) (*BobState, Stage, []*BobState, error) {
	if invite == nil {
		return nil, Stage{}, nil, errors.New("securejoin: nil invite")
	}
	log := logrus.WithFields(logrus.Fields{
		"function":    "StartProtocol",
		"contact":     invite.ContactID(),
		"chat":        chat,
		"fingerprint": invite.Fingerprint().Short(),
	})

	verified, err := deps.Verifier.VerifySenderByFingerprint(ctx, invite.Fingerprint(), invite.ContactID())
	if err != nil {
		return nil, Stage{}, nil, fmt.Errorf("securejoin: verify fingerprint: %w", err)
	}

	var (
		stage Stage
		next  Step
	)
	if verified {
		log.Info("Taking handshake shortcut, fingerprint already verified")
		if err := sendHandshakeMessage(ctx, deps, invite, chat, msgRequestWithAuth); err != nil {
			return nil, Stage{}, nil, err
		}
		stage = Stage{Kind: StageRequestWithAuthSent}
		next = StepContactConfirm
	} else {
		if err := sendHandshakeMessage(ctx, deps, invite, chat, msgRequest); err != nil {
			return nil, Stage{}, nil, err
		}
		stage = Stage{Kind: StageRequestSent}
		next = StepAuthRequired
	}

	id, aborted, err := insertNewRecord(ctx, deps, invite, next, chat)
	if err != nil {
		return nil, Stage{}, nil, err
	}
	state := &BobState{id: id, invite: invite, next: next, chatID: chat, deps: deps}

	if verified {
		if err := deps.Chats.SetProtected(ctx, chat, deps.now().Unix()); err != nil {
			return nil, Stage{}, nil, fmt.Errorf("securejoin: mark chat protected: %w", err)
		}
	}

	observeStage(stage)
	handshakesAborted.Add(float64(len(aborted)))
	log.WithFields(logrus.Fields{
		"id":      id,
		"stage":   stage.String(),
		"aborted": len(aborted),
	}).Info("Started joiner handshake")
	return state, stage, aborted, nil
}

// insertNewRecord replaces every stored handshake with a new one in one
// write transaction and returns the new id and the replaced states.
func insertNewRecord(
	ctx context.Context,
	deps *Deps,
	invite domain.Invite,
	next Step,
	chat domain.ChatID,
) (int64, []*BobState, error) {
	var (
		id      int64
		aborted []*BobState
	)
	err := deps.Store.Update(ctx, func(tx domain.HandshakeTx) error {
		aborted = nil
		// Writing first takes the lock before anything is read.
		if err := tx.SetAllSteps(StepTerminated.ToCode()); err != nil {
			return err
		}
		recs, err := tx.List()
		if err != nil {
			return err
		}
		for _, rec := range recs {
			st, err := fromRecord(rec, deps)
			if err != nil {
				return err
			}
			aborted = append(aborted, st)
		}
		if err := tx.DeleteAll(); err != nil {
			return err
		}
		id, err = tx.Insert(domain.HandshakeRecord{
			Invite:   invite,
			StepCode: next.ToCode(),
			ChatID:   chat,
		})
		return err
	})
	if err != nil {
		return 0, nil, fmt.Errorf("securejoin: store handshake: %w", err)
	}
	return id, aborted, nil
}

// FromDB loads the active handshake, or returns nil if there is none.
func FromDB(ctx context.Context, deps *Deps) (*BobState, error) {
	rec, ok, err := deps.Store.LoadActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("securejoin: load handshake: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return fromRecord(rec, deps)
}

func fromRecord(rec domain.HandshakeRecord, deps *Deps) (*BobState, error) {
	next, err := StepFromCode(rec.StepCode)
	if err != nil {
		return nil, err
	}
	if rec.Invite == nil {
		return nil, fmt.Errorf("securejoin: handshake %d has no invite", rec.ID)
	}
	return &BobState{id: rec.ID, invite: rec.Invite, next: next, chatID: rec.ChatID, deps: deps}, nil
}

// updateNext stores next and then applies it in memory. Terminal steps
// delete the record.
func (b *BobState) updateNext(ctx context.Context, next Step) error {
	var err error
	switch next {
	case StepAuthRequired, StepContactConfirm:
		err = b.deps.Store.SetStep(ctx, b.id, next.ToCode())
	default:
		err = b.deps.Store.Delete(ctx, b.id)
	}
	if err != nil {
		return fmt.Errorf("securejoin: update handshake %d to %s: %w", b.id, next, err)
	}
	b.next = next
	return nil
}

// HandleAuthRequired processes a vc-auth-required or vg-auth-required
// message.
//
// It returns nil if msg does not belong to this handshake at its current
// step. Otherwise the stage is either StageRequestWithAuthSent or
// StageTerminated; after the latter the BobState should be dropped.
func (b *BobState) HandleAuthRequired(ctx context.Context, msg domain.ReceivedMessage) (*Stage, error) {
	log := logrus.WithFields(logrus.Fields{
		"function": "HandleAuthRequired",
		"id":       b.id,
		"message":  msg.ID,
	})

	tag, ok := msg.Header(domain.HeaderSecureJoin)
	if !ok {
		log.Warn("Message has no Secure-Join header")
		return nil, nil
	}
	if !b.IsMsgExpected(tag) {
		log.WithField("tag", tag).Info("Message out of sync for handshake")
		return nil, nil
	}

	fp := b.invite.Fingerprint()
	if !b.deps.Verifier.EncryptedAndSigned(msg, fp) {
		reason := ReasonEncryptionMissing
		if msg.WasEncrypted {
			reason = ReasonSignatureMissing
		}
		return b.terminate(ctx, reason)
	}

	verified, err := b.deps.Verifier.VerifySenderByFingerprint(ctx, fp, b.invite.ContactID())
	if err != nil {
		return nil, fmt.Errorf("securejoin: verify fingerprint: %w", err)
	}
	if !verified {
		return b.terminate(ctx, ReasonFingerprintMismatch)
	}
	log.Info("Fingerprint verified")

	if err := b.updateNext(ctx, StepContactConfirm); err != nil {
		return nil, err
	}
	if err := sendHandshakeMessage(ctx, b.deps, b.invite, b.chatID, msgRequestWithAuth); err != nil {
		return nil, err
	}
	stage := Stage{Kind: StageRequestWithAuthSent}
	observeStage(stage)
	return &stage, nil
}

func (b *BobState) terminate(ctx context.Context, reason string) (*Stage, error) {
	if err := b.updateNext(ctx, StepTerminated); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "terminate",
		"id":       b.id,
		"reason":   reason,
	}).Warn("Handshake terminated")
	stage := terminated(reason)
	observeStage(*stage)
	return stage, nil
}

// IsMsgExpected reports whether a message with Secure-Join header tag is
// the one this handshake waits for. Both the invite variant and the step
// must match.
func (b *BobState) IsMsgExpected(tag string) bool {
	var variantMatches bool
	switch b.invite.(type) {
	case domain.ContactInvite:
		variantMatches = strings.HasPrefix(tag, prefixContact)
	case domain.GroupInvite:
		variantMatches = strings.HasPrefix(tag, prefixGroup)
	}
	stepMatches := b.next.matches(tag)
	return variantMatches && stepMatches
}

// StepContactConfirm finishes the handshake after the caller has accepted
// a vc-contact-confirm or vg-member-added message for this invite.
//
// The inviter is recorded as having verified our current key and the
// contact is raised to OriginSecurejoinJoined.
func (b *BobState) StepContactConfirm(ctx context.Context) error {
	fp := b.invite.Fingerprint()
	ps, ok, err := b.deps.PeerStates.LoadPeerStateByFingerprint(ctx, fp)
	if err != nil {
		return fmt.Errorf("securejoin: load peer state: %w", err)
	}
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function":    "StepContactConfirm",
			"id":          b.id,
			"fingerprint": fp.Short(),
		}).Warn("No peer state for invite fingerprint")
		return nil
	}

	keyID, err := b.deps.Self.KeyID(ctx)
	if err != nil {
		return fmt.Errorf("securejoin: load key id: %w", err)
	}
	ps.BackwardVerifiedKeyID = 0
	if keyID > 0 {
		ps.BackwardVerifiedKeyID = keyID
	}
	if err := b.deps.PeerStates.SavePeerState(ctx, ps); err != nil {
		return fmt.Errorf("securejoin: save peer state: %w", err)
	}

	contact := b.invite.ContactID()
	if err := b.deps.Contacts.ScaleUpOrigin(ctx, []domain.ContactID{contact}, domain.OriginSecurejoinJoined); err != nil {
		return fmt.Errorf("securejoin: scale up origin: %w", err)
	}
	b.deps.Events.Emit(domain.Event{Kind: domain.EventContactsChanged})

	if err := b.updateNext(ctx, StepCompleted); err != nil {
		return err
	}
	handshakesCompleted.Inc()
	logrus.WithFields(logrus.Fields{
		"function": "StepContactConfirm",
		"id":       b.id,
		"contact":  contact,
	}).Info("Handshake completed")
	return nil
}

// InProgress reports whether more messages from the inviter are expected.
func (b *BobState) InProgress() bool {
	return b.next != StepTerminated && b.next != StepCompleted
}
