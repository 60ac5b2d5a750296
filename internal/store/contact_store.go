package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"securejoin/internal/domain"
)

const contactsFilename = "contacts.json"

// firstContactID leaves low ids free for special contacts such as self.
const firstContactID = 10

type contactFile struct {
	NextID   domain.ContactID                    `json:"next_id"`
	Contacts map[domain.ContactID]domain.Contact `json:"contacts"`
}

// ContactFileStore persists the address book to disk.
type ContactFileStore struct {
	doc *jsonDoc[contactFile]
}

// NewContactFileStore returns a ContactFileStore rooted at dir.
func NewContactFileStore(dir string) *ContactFileStore {
	return &ContactFileStore{doc: newJSONDoc[contactFile](dir, contactsFilename)}
}

// LoadContact returns the contact with id.
func (s *ContactFileStore) LoadContact(
	_ context.Context,
	id domain.ContactID,
) (domain.Contact, bool, error) {
	cf, err := s.doc.load()
	if err != nil {
		return domain.Contact{}, false, err
	}
	c, ok := cf.Contacts[id]
	return c, ok, nil
}

// LookupOrCreateContact returns the id of the contact for addr, creating it
// with origin when missing. An existing contact's origin is raised to origin
// if lower and its name is filled in if empty.
func (s *ContactFileStore) LookupOrCreateContact(
	_ context.Context,
	addr domain.Username,
	name string,
	origin domain.Origin,
) (domain.ContactID, error) {
	if addr == "" {
		return 0, errors.New("contact: empty address")
	}

	var id domain.ContactID
	err := s.doc.update(func(cf *contactFile) error {
		for cid, c := range cf.Contacts {
			if c.Addr != addr {
				continue
			}
			c.Origin = max(c.Origin, origin)
			if c.Name == "" {
				c.Name = name
			}
			cf.Contacts[cid] = c
			id = cid
			return nil
		}
		if cf.Contacts == nil {
			cf.Contacts = map[domain.ContactID]domain.Contact{}
		}
		id = max(cf.NextID, firstContactID)
		cf.NextID = id + 1
		cf.Contacts[id] = domain.Contact{ID: id, Addr: addr, Name: name, Origin: origin}
		return nil
	})
	return id, err
}

// ScaleUpOrigin raises the origin of each listed contact to at least origin.
// Unknown ids are ignored.
func (s *ContactFileStore) ScaleUpOrigin(
	_ context.Context,
	ids []domain.ContactID,
	origin domain.Origin,
) error {
	return s.doc.update(func(cf *contactFile) error {
		for _, id := range ids {
			c, ok := cf.Contacts[id]
			if !ok || c.Origin >= origin {
				continue
			}
			c.Origin = origin
			cf.Contacts[id] = c
		}
		return nil
	})
}

// ListContacts returns all contacts ordered by id.
func (s *ContactFileStore) ListContacts(_ context.Context) ([]domain.Contact, error) {
	cf, err := s.doc.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Contact, 0, len(cf.Contacts))
	for _, c := range cf.Contacts {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Contact) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

var _ domain.ContactStore = (*ContactFileStore)(nil)
