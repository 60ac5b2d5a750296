package invite

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"securejoin/internal/domain"
)

// Scheme is the URI scheme of invitation codes, matched case-insensitively.
const Scheme = "OPENPGP4FPR:"

// ErrInvalidInvite is returned for codes that cannot start a handshake.
var ErrInvalidInvite = errors.New("invalid invite code")

// Parsed is the content of an invitation code before its address has been
// resolved to a contact.
type Parsed struct {
	Fingerprint  domain.Fingerprint
	Addr         domain.Username
	Name         string
	InviteNumber string
	AuthCode     string
	// Group and GroupName are set together, for group invites only.
	Group     domain.GroupID
	GroupName string
}

// IsGroup reports whether the code invites into a group.
func (p Parsed) IsGroup() bool { return p.Group != "" }

// Bind returns the domain invite for p with the inviter resolved to contact.
func (p Parsed) Bind(contact domain.ContactID) domain.Invite {
	if p.IsGroup() {
		return domain.GroupInvite{
			Fp:        p.Fingerprint,
			Contact:   contact,
			InviteNum: p.InviteNumber,
			Auth:      p.AuthCode,
			Group:     p.Group,
			GroupName: p.GroupName,
		}
	}
	return domain.ContactInvite{
		Fp:        p.Fingerprint,
		Contact:   contact,
		InviteNum: p.InviteNumber,
		Auth:      p.AuthCode,
	}
}

// Parse decodes an invitation code.
func Parse(code string) (Parsed, error) {
	code = strings.TrimSpace(code)
	if len(code) < len(Scheme) || !strings.EqualFold(code[:len(Scheme)], Scheme) {
		return Parsed{}, fmt.Errorf("%w: missing %s prefix", ErrInvalidInvite, Scheme)
	}
	rest := code[len(Scheme):]

	fpPart, fragment, _ := strings.Cut(rest, "#")
	fp, err := domain.ParseFingerprint(fpPart)
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}

	q, err := url.ParseQuery(fragment)
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}

	p := Parsed{
		Fingerprint:  fp,
		Addr:         domain.Username(strings.TrimSpace(q.Get("a"))),
		Name:         q.Get("n"),
		InviteNumber: q.Get("i"),
		AuthCode:     q.Get("s"),
		Group:        domain.GroupID(q.Get("x")),
		GroupName:    q.Get("g"),
	}
	switch {
	case p.Addr == "":
		return Parsed{}, fmt.Errorf("%w: missing address", ErrInvalidInvite)
	case p.InviteNumber == "":
		return Parsed{}, fmt.Errorf("%w: missing invite number", ErrInvalidInvite)
	case p.AuthCode == "":
		return Parsed{}, fmt.Errorf("%w: missing auth code", ErrInvalidInvite)
	case p.GroupName != "" && p.Group == "":
		return Parsed{}, fmt.Errorf("%w: group name without group id", ErrInvalidInvite)
	case p.Group != "" && p.GroupName == "":
		return Parsed{}, fmt.Errorf("%w: group id without group name", ErrInvalidInvite)
	}
	return p, nil
}

// Format renders p as an invitation code.
func Format(p Parsed) string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(string(p.Fingerprint))
	b.WriteString("#a=")
	b.WriteString(url.QueryEscape(string(p.Addr)))
	if p.Name != "" {
		b.WriteString("&n=")
		b.WriteString(url.QueryEscape(p.Name))
	}
	if p.IsGroup() {
		b.WriteString("&x=")
		b.WriteString(url.QueryEscape(string(p.Group)))
		b.WriteString("&g=")
		b.WriteString(url.QueryEscape(p.GroupName))
	}
	b.WriteString("&i=")
	b.WriteString(url.QueryEscape(p.InviteNumber))
	b.WriteString("&s=")
	b.WriteString(url.QueryEscape(p.AuthCode))
	return b.String()
}
