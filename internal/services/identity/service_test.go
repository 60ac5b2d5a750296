package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securejoin/internal/crypto"
	"securejoin/internal/domain"
	"securejoin/internal/services/identity"
	"securejoin/internal/store"
)

const goodPass = "Correct-Horse-42"

type memIdentityStore struct {
	pass string
	id   *domain.Identity
}

func (m *memIdentityStore) SaveIdentity(passphrase string, id domain.Identity) error {
	m.pass = passphrase
	m.id = &id
	return nil
}

func (m *memIdentityStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	if m.id == nil {
		return domain.Identity{}, store.ErrNoIdentity
	}
	if passphrase != m.pass {
		return domain.Identity{}, store.ErrWrongPassphrase
	}
	return *m.id, nil
}

func TestGenerateIdentity_RejectsWeakPassphrase(t *testing.T) {
	svc := identity.New(&memIdentityStore{})
	for _, p := range []string{"short", "alllowercase12!", "NoDigitsHere!!", "NoSymbols12345"} {
		if _, _, err := svc.GenerateIdentity(p); err != identity.ErrWeakPassphrase {
			t.Fatalf("passphrase %q: got %v, want ErrWeakPassphrase", p, err)
		}
	}
}

func TestGenerateIdentity_AssignsIncreasingKeyIDs(t *testing.T) {
	svc := identity.New(&memIdentityStore{})

	first, fp1, err := svc.GenerateIdentity(goodPass)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.KeyID)
	assert.Equal(t, crypto.Fingerprint(first.Public()), fp1)

	second, fp2, err := svc.GenerateIdentity(goodPass)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.KeyID)
	assert.NotEqual(t, fp1, fp2)
}

func TestFingerprintIdentity_MatchesGenerated(t *testing.T) {
	svc := identity.New(&memIdentityStore{})
	_, fp, err := svc.GenerateIdentity(goodPass)
	require.NoError(t, err)

	got, err := svc.FingerprintIdentity(goodPass)
	require.NoError(t, err)
	assert.Equal(t, fp, got)
	assert.Len(t, string(got), domain.FingerprintHexLen)
}

func TestUnlock_ServesSelfKeys(t *testing.T) {
	svc := identity.New(&memIdentityStore{})
	id, fp, err := svc.GenerateIdentity(goodPass)
	require.NoError(t, err)

	u, err := svc.Unlock(goodPass)
	require.NoError(t, err)

	ctx := context.Background()
	gotFp, err := u.SelfFingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, fp, gotFp)

	keyID, err := u.KeyID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id.KeyID, keyID)

	u.Wipe()
	assert.Equal(t, domain.X25519Private{}, u.Identity().XPriv)
}

func TestUnlock_WrongPassphrase(t *testing.T) {
	svc := identity.New(&memIdentityStore{})
	_, _, err := svc.GenerateIdentity(goodPass)
	require.NoError(t, err)

	_, err = svc.Unlock("Wrong-Horse-42")
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}
