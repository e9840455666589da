package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}
	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
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

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.getJSON(ctx, registeredPlayerKey(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Grid record operations

func (s *Storage) SavePlayerRecord(ctx context.Context, record *model.PlayerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(record.PlayerID), data, 0)
	pipe.SAdd(ctx, recordsIndexKey(), string(record.PlayerID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayerRecord(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	var record model.PlayerRecord
	if err := s.getJSON(ctx, recordKey(id), &record, model.ErrRecordNotFound); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) CountPlayerRecords(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, recordsIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Ciphertext operations

func (s *Storage) SaveCiphertext(ctx context.Context, h fhe.Handle, ct []byte) error {
	return s.client.Set(ctx, ciphertextKey(h), ct, 0).Err()
}

func (s *Storage) GetCiphertext(ctx context.Context, h fhe.Handle) ([]byte, error) {
	data, err := s.client.Get(ctx, ciphertextKey(h)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fhe.ErrCiphertextNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) Allow(ctx context.Context, h fhe.Handle, account fhe.Account) error {
	return s.client.SAdd(ctx, aclKey(h), string(account)).Err()
}

func (s *Storage) IsAllowed(ctx context.Context, h fhe.Handle, account fhe.Account) (bool, error) {
	return s.client.SIsMember(ctx, aclKey(h), string(account)).Result()
}

// Event log operations
// The list index is the sequence number minus one, so Seq is not stored.

func (s *Storage) AppendEvent(ctx context.Context, event *model.Event) error {
	stored := *event
	stored.Seq = 0
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	n, err := s.client.RPush(ctx, eventsKey(), data).Result()
	if err != nil {
		return err
	}
	event.Seq = n
	return nil
}

func (s *Storage) ListEvents(ctx context.Context, fromSeq int64, limit int) ([]*model.Event, error) {
	if fromSeq < 1 {
		fromSeq = 1
	}
	stop := int64(-1)
	if limit > 0 {
		stop = fromSeq - 1 + int64(limit) - 1
	}

	values, err := s.client.LRange(ctx, eventsKey(), fromSeq-1, stop).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*model.Event, 0, len(values))
	for i, val := range values {
		var event model.Event
		if err := json.Unmarshal([]byte(val), &event); err != nil {
			return nil, err
		}
		event.Seq = fromSeq + int64(i)
		events = append(events, &event)
	}
	return events, nil
}

// getJSON loads and decodes a JSON value, mapping a missing key to notFound
func (s *Storage) getJSON(ctx context.Context, key string, v any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}
