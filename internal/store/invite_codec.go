package store

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"securejoin/internal/domain"
)

const (
	inviteKindContact uint8 = 1
	inviteKindGroup   uint8 = 2
)

var errUnknownInviteKind = errors.New("unknown invite kind")

// inviteRecord is the CBOR form of a domain.Invite.
type inviteRecord struct {
	Kind         uint8  `cbor:"1,keyasint"`
	Fingerprint  string `cbor:"2,keyasint"`
	ContactID    int64  `cbor:"3,keyasint"`
	InviteNumber string `cbor:"4,keyasint"`
	AuthCode     string `cbor:"5,keyasint"`
	GroupID      string `cbor:"6,keyasint,omitempty"`
	GroupName    string `cbor:"7,keyasint,omitempty"`
}

func toInviteRecord(inv domain.Invite) (inviteRecord, error) {
	switch v := inv.(type) {
	case domain.ContactInvite:
		return inviteRecord{
			Kind:         inviteKindContact,
			Fingerprint:  v.Fp.String(),
			ContactID:    int64(v.Contact),
			InviteNumber: v.InviteNum,
			AuthCode:     v.Auth,
		}, nil
	case domain.GroupInvite:
		return inviteRecord{
			Kind:         inviteKindGroup,
			Fingerprint:  v.Fp.String(),
			ContactID:    int64(v.Contact),
			InviteNumber: v.InviteNum,
			AuthCode:     v.Auth,
			GroupID:      v.Group.String(),
			GroupName:    v.GroupName,
		}, nil
	default:
		return inviteRecord{}, fmt.Errorf("%w: %T", errUnknownInviteKind, inv)
	}
}

func (r inviteRecord) invite() (domain.Invite, error) {
	switch r.Kind {
	case inviteKindContact:
		return domain.ContactInvite{
			Fp:        domain.Fingerprint(r.Fingerprint),
			Contact:   domain.ContactID(r.ContactID),
			InviteNum: r.InviteNumber,
			Auth:      r.AuthCode,
		}, nil
	case inviteKindGroup:
		return domain.GroupInvite{
			Fp:        domain.Fingerprint(r.Fingerprint),
			Contact:   domain.ContactID(r.ContactID),
			InviteNum: r.InviteNumber,
			Auth:      r.AuthCode,
			Group:     domain.GroupID(r.GroupID),
			GroupName: r.GroupName,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownInviteKind, r.Kind)
	}
}

// marshalInvite encodes inv as CBOR.
func marshalInvite(inv domain.Invite) ([]byte, error) {
	rec, err := toInviteRecord(inv)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(rec)
}

// unmarshalInvite decodes an invite produced by marshalInvite.
func unmarshalInvite(b []byte) (domain.Invite, error) {
	var rec inviteRecord
	if err := cbor.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode invite: %w", err)
	}
	return rec.invite()
}
