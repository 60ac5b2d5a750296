package store

import (
	"context"

	"securejoin/internal/domain"
)

const peerStatesFilename = "peerstates.json"

// PeerStateFileStore persists peer key state keyed by address.
type PeerStateFileStore struct {
	doc *jsonDoc[map[domain.Username]domain.PeerState]
}

// NewPeerStateFileStore returns a PeerStateFileStore rooted at dir.
func NewPeerStateFileStore(dir string) *PeerStateFileStore {
	return &PeerStateFileStore{
		doc: newJSONDoc[map[domain.Username]domain.PeerState](dir, peerStatesFilename),
	}
}

// LoadPeerStateByAddr returns the state stored for addr.
func (s *PeerStateFileStore) LoadPeerStateByAddr(
	_ context.Context,
	addr domain.Username,
) (domain.PeerState, bool, error) {
	states, err := s.doc.load()
	if err != nil {
		return domain.PeerState{}, false, err
	}
	ps, ok := states[addr]
	return ps, ok, nil
}

// LoadPeerStateByFingerprint returns the first state whose public or verified
// key has fingerprint fp.
func (s *PeerStateFileStore) LoadPeerStateByFingerprint(
	_ context.Context,
	fp domain.Fingerprint,
) (domain.PeerState, bool, error) {
	if fp == "" {
		return domain.PeerState{}, false, nil
	}
	states, err := s.doc.load()
	if err != nil {
		return domain.PeerState{}, false, err
	}
	for _, ps := range states {
		if ps.PublicKeyFingerprint == fp || ps.VerifiedKeyFingerprint == fp {
			return ps, true, nil
		}
	}
	return domain.PeerState{}, false, nil
}

// SavePeerState inserts or replaces the state for ps.Addr.
func (s *PeerStateFileStore) SavePeerState(_ context.Context, ps domain.PeerState) error {
	return s.doc.update(func(states *map[domain.Username]domain.PeerState) error {
		if *states == nil {
			*states = map[domain.Username]domain.PeerState{}
		}
		(*states)[ps.Addr] = ps
		return nil
	})
}

var _ domain.PeerStateStore = (*PeerStateFileStore)(nil)
