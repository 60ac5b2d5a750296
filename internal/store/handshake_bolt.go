package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"securejoin/internal/domain"
)

const (
	handshakeBoltFilename = "securejoin.db"

	bobStateBucket = "bobstate"
	metadataBucket = "metadata"
	versionKey     = "version"
	boltVersion    = 0
)

// bobStateRow is the CBOR value stored per handshake id.
type bobStateRow struct {
	Invite   inviteRecord `cbor:"1,keyasint"`
	NextStep int64        `cbor:"2,keyasint"`
	ChatID   int64        `cbor:"3,keyasint"`
}

// HandshakeBoltStore keeps the joiner handshake state in a bbolt database.
//
// bbolt allows a single writer at a time, so Update is serialized against
// every other write to the file.
type HandshakeBoltStore struct {
	db *bolt.DB
}

// OpenHandshakeBoltStore opens (or creates) the database in dir.
func OpenHandshakeBoltStore(dir string) (*HandshakeBoltStore, error) {
	return openHandshakeBolt(filepath.Join(dir, handshakeBoltFilename))
}

func openHandshakeBolt(path string) (*HandshakeBoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open handshake db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(bobStateBucket)); err != nil {
			return err
		}
		if b := meta.Get([]byte(versionKey)); b != nil {
			if len(b) != 1 || b[0] != boltVersion {
				return fmt.Errorf("handshake db: incompatible version: %v", b)
			}
			return nil
		}
		return meta.Put([]byte(versionKey), []byte{boltVersion})
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &HandshakeBoltStore{db: db}, nil
}

// Update runs fn in a bbolt read-write transaction.
func (s *HandshakeBoltStore) Update(ctx context.Context, fn func(tx domain.HandshakeTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltHandshakeTx{bkt: tx.Bucket([]byte(bobStateBucket))})
	})
}

// LoadActive returns the first (and normally only) stored record.
func (s *HandshakeBoltStore) LoadActive(ctx context.Context) (domain.HandshakeRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.HandshakeRecord{}, false, err
	}
	var (
		rec   domain.HandshakeRecord
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		k, v := tx.Bucket([]byte(bobStateBucket)).Cursor().First()
		if k == nil {
			return nil
		}
		r, err := decodeBobStateRow(k, v)
		if err != nil {
			return err
		}
		rec, found = r, true
		return nil
	})
	return rec, found, err
}

// SetStep updates the step of record id. A missing record is not an error.
func (s *HandshakeBoltStore) SetStep(ctx context.Context, id int64, code int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bobStateBucket))
		k := idKey(id)
		v := bkt.Get(k)
		if v == nil {
			return nil
		}
		var row bobStateRow
		if err := cbor.Unmarshal(v, &row); err != nil {
			return err
		}
		row.NextStep = code
		return putRow(bkt, k, row)
	})
}

// Delete removes record id.
func (s *HandshakeBoltStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bobStateBucket)).Delete(idKey(id))
	})
}

// Close syncs and closes the database.
func (s *HandshakeBoltStore) Close() error {
	_ = s.db.Sync()
	return s.db.Close()
}

type boltHandshakeTx struct {
	bkt *bolt.Bucket
}

func (t *boltHandshakeTx) SetAllSteps(code int64) error {
	var keys [][]byte
	if err := t.bkt.ForEach(func(k, _ []byte) error {
		keys = append(keys, append([]byte(nil), k...))
		return nil
	}); err != nil {
		return err
	}
	for _, k := range keys {
		var row bobStateRow
		if err := cbor.Unmarshal(t.bkt.Get(k), &row); err != nil {
			return err
		}
		row.NextStep = code
		if err := putRow(t.bkt, k, row); err != nil {
			return err
		}
	}
	return nil
}

func (t *boltHandshakeTx) List() ([]domain.HandshakeRecord, error) {
	var out []domain.HandshakeRecord
	err := t.bkt.ForEach(func(k, v []byte) error {
		rec, err := decodeBobStateRow(k, v)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func (t *boltHandshakeTx) DeleteAll() error {
	var keys [][]byte
	if err := t.bkt.ForEach(func(k, _ []byte) error {
		keys = append(keys, append([]byte(nil), k...))
		return nil
	}); err != nil {
		return err
	}
	for _, k := range keys {
		if err := t.bkt.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (t *boltHandshakeTx) Insert(rec domain.HandshakeRecord) (int64, error) {
	seq, err := t.bkt.NextSequence()
	if err != nil {
		return 0, err
	}
	inv, err := toInviteRecord(rec.Invite)
	if err != nil {
		return 0, err
	}
	id := int64(seq)
	row := bobStateRow{Invite: inv, NextStep: rec.StepCode, ChatID: int64(rec.ChatID)}
	if err := putRow(t.bkt, idKey(id), row); err != nil {
		return 0, err
	}
	return id, nil
}

func putRow(bkt *bolt.Bucket, k []byte, row bobStateRow) error {
	b, err := cbor.Marshal(row)
	if err != nil {
		return err
	}
	return bkt.Put(k, b)
}

func decodeBobStateRow(k, v []byte) (domain.HandshakeRecord, error) {
	var row bobStateRow
	if err := cbor.Unmarshal(v, &row); err != nil {
		return domain.HandshakeRecord{}, fmt.Errorf("decode handshake row: %w", err)
	}
	inv, err := row.Invite.invite()
	if err != nil {
		return domain.HandshakeRecord{}, err
	}
	return domain.HandshakeRecord{
		ID:       int64(binary.BigEndian.Uint64(k)),
		Invite:   inv,
		StepCode: row.NextStep,
		ChatID:   domain.ChatID(row.ChatID),
	}, nil
}

func idKey(id int64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}

// Compile-time assertion that HandshakeBoltStore implements domain.HandshakeStore.
var _ domain.HandshakeStore = (*HandshakeBoltStore)(nil)
