package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"securejoin/internal/crypto"
	"securejoin/internal/domain"
)

const idFilename = "identity.json.enc"

// ErrNoIdentity is returned when no identity has been created yet.
var ErrNoIdentity = errors.New("no identity found; run init first")

// IdentityFileStore keeps the local identity sealed under a passphrase in a
// single file.
type IdentityFileStore struct {
	path   string
	mu     sync.Mutex
	params scryptParams
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{
		path:   filepath.Join(dir, idFilename),
		params: defaultScryptParams,
	}
}

// SaveIdentity seals id with passphrase and replaces any stored identity.
func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	sealed, err := seal(passphrase, raw, s.params)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return replaceFile(s.path, sealed, 0o600)
}

// LoadIdentity opens the stored identity. It fails with ErrNoIdentity if
// none was saved and ErrWrongPassphrase if it cannot be opened.
func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	s.mu.Lock()
	sealed, err := os.ReadFile(s.path)
	s.mu.Unlock()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return domain.Identity{}, ErrNoIdentity
	case err != nil:
		return domain.Identity{}, err
	}

	raw, err := open(passphrase, sealed)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.Wipe(raw)

	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

var _ domain.IdentityStore = (*IdentityFileStore)(nil)
