package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"securejoin/internal/domain"
)

const handshakeSQLiteFilename = "securejoin.sqlite"

// HandshakeSQLStore keeps the joiner handshake state in a SQLite table.
//
// The connection is opened with _txlock=immediate so that every transaction
// takes the database write lock at BEGIN.
type HandshakeSQLStore struct {
	db *sql.DB
}

// OpenHandshakeSQLStore opens (or creates) the SQLite database in dir.
func OpenHandshakeSQLStore(dir string) (*HandshakeSQLStore, error) {
	path := filepath.Join(dir, handshakeSQLiteFilename)
	db, err := sql.Open("sqlite3", "file:"+path+"?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &HandshakeSQLStore{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return s, nil
}

func (s *HandshakeSQLStore) initTables() error {
	const createBobState = `
	CREATE TABLE IF NOT EXISTS bobstate (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invite BLOB NOT NULL,
		next_step INTEGER NOT NULL,
		chat_id INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(createBobState)
	return err
}

// Update runs fn inside a single immediate transaction.
func (s *HandshakeSQLStore) Update(ctx context.Context, fn func(tx domain.HandshakeTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&sqlHandshakeTx{ctx: ctx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// LoadActive returns the single stored row, if any.
func (s *HandshakeSQLStore) LoadActive(ctx context.Context) (domain.HandshakeRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, invite, next_step, chat_id FROM bobstate LIMIT 1;")
	rec, err := scanBobState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HandshakeRecord{}, false, nil
	}
	if err != nil {
		return domain.HandshakeRecord{}, false, err
	}
	return rec, true, nil
}

// SetStep updates the step of row id; a missing row is not an error.
func (s *HandshakeSQLStore) SetStep(ctx context.Context, id int64, code int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE bobstate SET next_step=? WHERE id=?;", code, id)
	if err != nil {
		return fmt.Errorf("failed to update handshake step: %w", err)
	}
	return nil
}

// Delete removes row id.
func (s *HandshakeSQLStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM bobstate WHERE id=?;", id)
	if err != nil {
		return fmt.Errorf("failed to delete handshake: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *HandshakeSQLStore) Close() error {
	return s.db.Close()
}

type sqlHandshakeTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *sqlHandshakeTx) SetAllSteps(code int64) error {
	_, err := t.tx.ExecContext(t.ctx, "UPDATE bobstate SET next_step=?;", code)
	return err
}

func (t *sqlHandshakeTx) List() ([]domain.HandshakeRecord, error) {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT id, invite, next_step, chat_id FROM bobstate ORDER BY id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HandshakeRecord
	for rows.Next() {
		rec, err := scanBobState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (t *sqlHandshakeTx) DeleteAll() error {
	_, err := t.tx.ExecContext(t.ctx, "DELETE FROM bobstate;")
	return err
}

func (t *sqlHandshakeTx) Insert(rec domain.HandshakeRecord) (int64, error) {
	inv, err := marshalInvite(rec.Invite)
	if err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO bobstate (invite, next_step, chat_id) VALUES (?, ?, ?);",
		inv, rec.StepCode, int64(rec.ChatID),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBobState(r rowScanner) (domain.HandshakeRecord, error) {
	var (
		rec    domain.HandshakeRecord
		inv    []byte
		chatID int64
	)
	if err := r.Scan(&rec.ID, &inv, &rec.StepCode, &chatID); err != nil {
		return domain.HandshakeRecord{}, err
	}
	invite, err := unmarshalInvite(inv)
	if err != nil {
		return domain.HandshakeRecord{}, err
	}
	rec.Invite = invite
	rec.ChatID = domain.ChatID(chatID)
	return rec, nil
}

// Compile-time assertion that HandshakeSQLStore implements domain.HandshakeStore.
var _ domain.HandshakeStore = (*HandshakeSQLStore)(nil)
