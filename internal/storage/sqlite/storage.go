package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/storage"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens (creating if needed) the database at path
func Open(path string) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS registered_players (
			player_id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			player_id TEXT PRIMARY KEY,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ciphertexts (
			handle TEXT PRIMARY KEY,
			data BLOB NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS acl (
			handle TEXT NOT NULL,
			account TEXT NOT NULL,
			PRIMARY KEY (handle, account)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			json TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	return s.upsertJSON(ctx,
		`INSERT INTO players (id, json) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET json = excluded.json`,
		string(player.ID), player)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	err := s.queryJSON(ctx, `SELECT json FROM players WHERE id = ?`, string(id), &player, model.ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO registered_players (player_id, username, json) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET username = excluded.username, json = excluded.json`,
		string(rp.PlayerID), rp.Username, string(data))
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	err := s.queryJSON(ctx, `SELECT json FROM registered_players WHERE player_id = ?`, string(playerID), &rp, model.ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	err := s.queryJSON(ctx, `SELECT json FROM registered_players WHERE username = ?`, username, &rp, model.ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

// Grid record operations

func (s *Storage) SavePlayerRecord(ctx context.Context, record *model.PlayerRecord) error {
	return s.upsertJSON(ctx,
		`INSERT INTO records (player_id, json) VALUES (?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET json = excluded.json`,
		string(record.PlayerID), record)
}

func (s *Storage) GetPlayerRecord(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	var record model.PlayerRecord
	err := s.queryJSON(ctx, `SELECT json FROM records WHERE player_id = ?`, string(id), &record, model.ErrRecordNotFound)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) CountPlayerRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Ciphertext operations

func (s *Storage) SaveCiphertext(ctx context.Context, h fhe.Handle, ct []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ciphertexts (handle, data) VALUES (?, ?)
		 ON CONFLICT(handle) DO UPDATE SET data = excluded.data`,
		h.String(), ct)
	return err
}

func (s *Storage) GetCiphertext(ctx context.Context, h fhe.Handle) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM ciphertexts WHERE handle = ?`, h.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fhe.ErrCiphertextNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) Allow(ctx context.Context, h fhe.Handle, account fhe.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO acl (handle, account) VALUES (?, ?)`,
		h.String(), string(account))
	return err
}

func (s *Storage) IsAllowed(ctx context.Context, h fhe.Handle, account fhe.Account) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM acl WHERE handle = ? AND account = ?`,
		h.String(), string(account)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Event log operations

func (s *Storage) AppendEvent(ctx context.Context, event *model.Event) error {
	stored := *event
	stored.Seq = 0
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO events (json) VALUES (?)`, string(data))
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	event.Seq = seq
	return nil
}

func (s *Storage) ListEvents(ctx context.Context, fromSeq int64, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, json FROM events WHERE seq >= ? ORDER BY seq LIMIT ?`,
		fromSeq, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []*model.Event
	for rows.Next() {
		var (
			seq  int64
			data string
		)
		if err := rows.Scan(&seq, &data); err != nil {
			return nil, err
		}
		var event model.Event
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, err
		}
		event.Seq = seq
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (s *Storage) upsertJSON(ctx context.Context, query, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, key, string(data))
	return err
}

func (s *Storage) queryJSON(ctx context.Context, query, key string, v any, notFound error) error {
	var data string
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return err
	}
	return json.Unmarshal([]byte(data), v)
}
