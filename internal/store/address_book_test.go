package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securejoin/internal/domain"
	"securejoin/internal/store"
)

func TestContacts_LookupOrCreate(t *testing.T) {
	ctx := context.Background()
	cs := store.NewContactFileStore(t.TempDir())

	id, err := cs.LookupOrCreateContact(ctx, "alice", "", domain.OriginIncomingUnknown)
	require.NoError(t, err)

	again, err := cs.LookupOrCreateContact(ctx, "alice", "Alice", domain.OriginUnhandledQrScan)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	c, ok, err := cs.LoadContact(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, domain.OriginUnhandledQrScan, c.Origin)

	// A weaker origin does not lower it.
	_, err = cs.LookupOrCreateContact(ctx, "alice", "Other", domain.OriginIncomingUnknown)
	require.NoError(t, err)
	c, _, err = cs.LoadContact(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OriginUnhandledQrScan, c.Origin)
	assert.Equal(t, "Alice", c.Name)

	bob, err := cs.LookupOrCreateContact(ctx, "bob", "", domain.OriginManuallyCreated)
	require.NoError(t, err)
	assert.NotEqual(t, id, bob)

	all, err := cs.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Less(t, int64(all[0].ID), int64(all[1].ID))

	_, err = cs.LookupOrCreateContact(ctx, "", "", domain.OriginUnknown)
	assert.Error(t, err)
}

func TestContacts_ScaleUpOrigin(t *testing.T) {
	ctx := context.Background()
	cs := store.NewContactFileStore(t.TempDir())

	low, err := cs.LookupOrCreateContact(ctx, "low", "", domain.OriginUnhandledQrScan)
	require.NoError(t, err)
	high, err := cs.LookupOrCreateContact(ctx, "high", "", domain.OriginSecurejoinJoined+1)
	require.NoError(t, err)

	require.NoError(t, cs.ScaleUpOrigin(ctx, []domain.ContactID{low, high, 999}, domain.OriginSecurejoinJoined))

	c, _, err := cs.LoadContact(ctx, low)
	require.NoError(t, err)
	assert.Equal(t, domain.OriginSecurejoinJoined, c.Origin)

	c, _, err = cs.LoadContact(ctx, high)
	require.NoError(t, err)
	assert.Equal(t, domain.OriginSecurejoinJoined+1, c.Origin)
}

func TestChats_ProtectAndInfo(t *testing.T) {
	ctx := context.Background()
	chats := store.NewChatFileStore(t.TempDir())

	id, err := chats.CreateChatForContact(ctx, 10)
	require.NoError(t, err)
	same, err := chats.CreateChatForContact(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, id, same)

	require.NoError(t, chats.SetProtected(ctx, id, 200))
	require.NoError(t, chats.SetProtected(ctx, id, 300))
	require.NoError(t, chats.AddInfo(ctx, id, "Secure-Join aborted"))

	c, ok, err := chats.LoadChat(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(200), c.ProtectedSince)
	require.Len(t, c.Info, 1)
	assert.Equal(t, "Secure-Join aborted", c.Info[0].Text)
	assert.InDelta(t, time.Now().Unix(), c.Info[0].Timestamp, 60)

	assert.Error(t, chats.SetProtected(ctx, id+100, 1))
}

func TestPeerStates_LookupByFingerprint(t *testing.T) {
	ctx := context.Background()
	ps := store.NewPeerStateFileStore(t.TempDir())

	require.NoError(t, ps.SavePeerState(ctx, domain.PeerState{
		Addr:                 "alice",
		PublicKeyFingerprint: "PUB",
	}))
	require.NoError(t, ps.SavePeerState(ctx, domain.PeerState{
		Addr:                   "bob",
		PublicKeyFingerprint:   "NEW",
		VerifiedKeyFingerprint: "OLD",
		BackwardVerifiedKeyID:  4,
	}))

	got, ok, err := ps.LoadPeerStateByFingerprint(ctx, "PUB")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Username("alice"), got.Addr)

	got, ok, err = ps.LoadPeerStateByFingerprint(ctx, "OLD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(4), got.BackwardVerifiedKeyID)

	_, ok, err = ps.LoadPeerStateByFingerprint(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ps.LoadPeerStateByAddr(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, ok)
}
