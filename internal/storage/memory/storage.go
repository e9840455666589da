package memory

import (
	"context"
	"sync"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	records           map[model.PlayerID]model.PlayerRecord
	ciphertexts       map[fhe.Handle][]byte
	acl               map[aclKey]struct{}
	events            []model.Event
}

type aclKey struct {
	handle  fhe.Handle
	account fhe.Account
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		records:           make(map[model.PlayerID]model.PlayerRecord),
		ciphertexts:       make(map[fhe.Handle][]byte),
		acl:               make(map[aclKey]struct{}),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredPlayers[rp.PlayerID] = rp
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

// Grid record operations
// Records are stored by value so callers never share a mutable copy.

func (s *Storage) SavePlayerRecord(ctx context.Context, record *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.PlayerID] = *record
	return nil
}

func (s *Storage) GetPlayerRecord(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	return &record, nil
}

func (s *Storage) CountPlayerRecords(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Ciphertext operations

func (s *Storage) SaveCiphertext(ctx context.Context, h fhe.Handle, ct []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(ct))
	copy(stored, ct)
	s.ciphertexts[h] = stored
	return nil
}

func (s *Storage) GetCiphertext(ctx context.Context, h fhe.Handle) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ct, ok := s.ciphertexts[h]
	if !ok {
		return nil, fhe.ErrCiphertextNotFound
	}
	result := make([]byte, len(ct))
	copy(result, ct)
	return result, nil
}

func (s *Storage) Allow(ctx context.Context, h fhe.Handle, account fhe.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acl[aclKey{handle: h, account: account}] = struct{}{}
	return nil
}

func (s *Storage) IsAllowed(ctx context.Context, h fhe.Handle, account fhe.Account) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.acl[aclKey{handle: h, account: account}]
	return ok, nil
}

// Event log operations

func (s *Storage) AppendEvent(ctx context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Seq = int64(len(s.events)) + 1
	s.events = append(s.events, *event)
	return nil
}

func (s *Storage) ListEvents(ctx context.Context, fromSeq int64, limit int) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fromSeq < 1 {
		fromSeq = 1
	}
	var events []*model.Event
	for i := fromSeq - 1; i < int64(len(s.events)); i++ {
		if limit > 0 && len(events) >= limit {
			break
		}
		e := s.events[i]
		events = append(events, &e)
	}
	return events, nil
}
