package types

// Invite is the parsed content of a scanned invitation code.
//
// It is a closed sum type: the only implementations are ContactInvite and
// GroupInvite. Code that depends on the variant uses a type switch over
// those two.
type Invite interface {
	Fingerprint() Fingerprint
	ContactID() ContactID
	InviteNumber() string
	AuthCode() string

	isInvite()
}

// ContactInvite sets up a verified 1:1 contact.
type ContactInvite struct {
	Fp        Fingerprint
	Contact   ContactID
	InviteNum string
	Auth      string
}

// GroupInvite joins a verified group through the inviter.
type GroupInvite struct {
	Fp        Fingerprint
	Contact   ContactID
	InviteNum string
	Auth      string
	Group     GroupID
	GroupName string
}

func (i ContactInvite) Fingerprint() Fingerprint { return i.Fp }
func (i ContactInvite) ContactID() ContactID     { return i.Contact }
func (i ContactInvite) InviteNumber() string     { return i.InviteNum }
func (i ContactInvite) AuthCode() string         { return i.Auth }
func (ContactInvite) isInvite()                  {}

func (i GroupInvite) Fingerprint() Fingerprint { return i.Fp }
func (i GroupInvite) ContactID() ContactID     { return i.Contact }
func (i GroupInvite) InviteNumber() string     { return i.InviteNum }
func (i GroupInvite) AuthCode() string         { return i.Auth }
func (GroupInvite) isInvite()                  {}
