package securejoin_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"securejoin/internal/domain"
)

// memStore is an in-memory HandshakeStore. Update works on a copy that is
// only committed when fn succeeds.
type memStore struct {
	mu     sync.Mutex
	rows   map[int64]domain.HandshakeRecord
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{rows: map[int64]domain.HandshakeRecord{}, nextID: 1}
}

type memTx struct {
	rows   map[int64]domain.HandshakeRecord
	nextID *int64
}

func (tx *memTx) SetAllSteps(code int64) error {
	for id, r := range tx.rows {
		r.StepCode = code
		tx.rows[id] = r
	}
	return nil
}

func (tx *memTx) List() ([]domain.HandshakeRecord, error) {
	out := make([]domain.HandshakeRecord, 0, len(tx.rows))
	for _, r := range tx.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx *memTx) DeleteAll() error {
	for id := range tx.rows {
		delete(tx.rows, id)
	}
	return nil
}

func (tx *memTx) Insert(rec domain.HandshakeRecord) (int64, error) {
	rec.ID = *tx.nextID
	*tx.nextID++
	tx.rows[rec.ID] = rec
	return rec.ID, nil
}

func (s *memStore) Update(_ context.Context, fn func(tx domain.HandshakeTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make(map[int64]domain.HandshakeRecord, len(s.rows))
	for id, r := range s.rows {
		rows[id] = r
	}
	next := s.nextID
	if err := fn(&memTx{rows: rows, nextID: &next}); err != nil {
		return err
	}
	s.rows = rows
	s.nextID = next
	return nil
}

func (s *memStore) LoadActive(context.Context) (domain.HandshakeRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best  domain.HandshakeRecord
		found bool
	)
	for _, r := range s.rows {
		if !found || r.ID < best.ID {
			best, found = r, true
		}
	}
	return best, found, nil
}

func (s *memStore) SetStep(_ context.Context, id int64, code int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rows[id]; ok {
		r.StepCode = code
		s.rows[id] = r
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, id)
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// fakeVerifier reports fingerprints in verified as verified for any contact.
type fakeVerifier struct {
	mu       sync.Mutex
	verified map[domain.Fingerprint]bool
	calls    int
	err      error
}

func (v *fakeVerifier) VerifySenderByFingerprint(
	_ context.Context,
	fp domain.Fingerprint,
	_ domain.ContactID,
) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.err != nil {
		return false, v.err
	}
	return v.verified[fp], nil
}

func (v *fakeVerifier) EncryptedAndSigned(msg domain.ReceivedMessage, fp domain.Fingerprint) bool {
	return msg.WasEncrypted && msg.SignedBy(fp)
}

type fakePeers struct {
	byFp  map[domain.Fingerprint]domain.PeerState
	saved []domain.PeerState
}

func (p *fakePeers) LoadPeerStateByAddr(
	_ context.Context,
	addr domain.Username,
) (domain.PeerState, bool, error) {
	for _, ps := range p.byFp {
		if ps.Addr == addr {
			return ps, true, nil
		}
	}
	return domain.PeerState{}, false, nil
}

func (p *fakePeers) LoadPeerStateByFingerprint(
	_ context.Context,
	fp domain.Fingerprint,
) (domain.PeerState, bool, error) {
	ps, ok := p.byFp[fp]
	return ps, ok, nil
}

func (p *fakePeers) SavePeerState(_ context.Context, ps domain.PeerState) error {
	p.saved = append(p.saved, ps)
	p.byFp[ps.PublicKeyFingerprint] = ps
	return nil
}

type fakeContacts struct {
	origins map[domain.ContactID]domain.Origin
}

func (c *fakeContacts) LoadContact(
	_ context.Context,
	id domain.ContactID,
) (domain.Contact, bool, error) {
	o, ok := c.origins[id]
	return domain.Contact{ID: id, Origin: o}, ok, nil
}

func (c *fakeContacts) LookupOrCreateContact(
	context.Context,
	domain.Username,
	string,
	domain.Origin,
) (domain.ContactID, error) {
	return 0, errors.New("not used")
}

func (c *fakeContacts) ScaleUpOrigin(
	_ context.Context,
	ids []domain.ContactID,
	origin domain.Origin,
) error {
	for _, id := range ids {
		if c.origins[id] < origin {
			c.origins[id] = origin
		}
	}
	return nil
}

func (c *fakeContacts) ListContacts(context.Context) ([]domain.Contact, error) {
	return nil, nil
}

type fakeChats struct {
	protected map[domain.ChatID]int64
}

func (c *fakeChats) LoadChat(_ context.Context, id domain.ChatID) (domain.Chat, bool, error) {
	return domain.Chat{ID: id, ProtectedSince: c.protected[id]}, true, nil
}

func (c *fakeChats) CreateChatForContact(context.Context, domain.ContactID) (domain.ChatID, error) {
	return 0, errors.New("not used")
}

func (c *fakeChats) SetProtected(_ context.Context, id domain.ChatID, since int64) error {
	c.protected[id] = since
	return nil
}

func (c *fakeChats) AddInfo(context.Context, domain.ChatID, string) error { return nil }

type sentMessage struct {
	chat domain.ChatID
	msg  domain.OutgoingMessage
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	// failOn makes sends with this Secure-Join value fail.
	failOn string
}

func (s *fakeSender) SendMessage(_ context.Context, chat domain.ChatID, msg domain.OutgoingMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && msg.Headers[domain.HeaderSecureJoin] == s.failOn {
		return errors.New("send failed")
	}
	s.sent = append(s.sent, sentMessage{chat: chat, msg: msg})
	return nil
}

type fakeSelf struct {
	fp    domain.Fingerprint
	keyID int64
}

func (s fakeSelf) SelfFingerprint(context.Context) (domain.Fingerprint, error) { return s.fp, nil }
func (s fakeSelf) KeyID(context.Context) (int64, error)                        { return s.keyID, nil }

type fakeEvents struct {
	events []domain.Event
}

func (e *fakeEvents) Emit(ev domain.Event) { e.events = append(e.events, ev) }
