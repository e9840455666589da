// Package grid keeps per-player membership and encrypted positions on the board.
package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/hiddengrid/internal/dependencies/clock"
	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/movement"
	"github.com/mcoot/hiddengrid/internal/storage"
)

// Publisher receives ledger events after they are persisted
type Publisher interface {
	Publish(ctx context.Context, event *model.Event)
}

// Controller applies joins and moves. Writes are serialized so every
// operation observes the state left by the previous one.
type Controller struct {
	mu        sync.RWMutex
	storage   storage.Storage
	exec      *fhe.Executor
	engine    *movement.Engine
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewController creates a new grid Controller. publisher may be nil.
func NewController(
	storage storage.Storage,
	exec *fhe.Executor,
	engine *movement.Engine,
	publisher Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		exec:      exec,
		engine:    engine,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "grid")),
	}
}

// Join places a player on the board at a random encrypted position
func (c *Controller) Join(ctx context.Context, playerID model.PlayerID) (*model.PlayerRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	joined, err := c.hasJoined(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, model.ErrAlreadyJoined
	}

	pos, err := c.engine.Spawn(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.grant(ctx, pos, playerID); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	record := &model.PlayerRecord{
		PlayerID:  playerID,
		Joined:    true,
		X:         pos.X.Handle(),
		Y:         pos.Y.Handle(),
		JoinedAt:  now,
		UpdatedAt: now,
	}
	if err := c.storage.SavePlayerRecord(ctx, record); err != nil {
		c.logger.Error("failed to save player record",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("player joined", slog.String("player_id", string(playerID)))
	c.emit(ctx, model.EventPlayerJoined, record)

	return record, nil
}

// Move applies an encrypted direction submitted by the player. dir and
// proof come from input verification; the direction value is never seen.
func (c *Controller) Move(ctx context.Context, playerID model.PlayerID, dir fhe.Handle, proof []byte) (*model.PlayerRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, err := c.storage.GetPlayerRecord(ctx, playerID)
	if errors.Is(err, model.ErrRecordNotFound) {
		return nil, model.ErrNotJoined
	}
	if err != nil {
		return nil, err
	}
	if !record.Joined {
		return nil, model.ErrNotJoined
	}

	direction, err := c.exec.FromExternal(ctx, dir, proof, fhe.Account(playerID))
	if err != nil {
		c.logger.Warn("rejected move input",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	pos, err := c.engine.Step(ctx, record.Position(), direction)
	if err != nil {
		return nil, err
	}
	if err := c.grant(ctx, pos, playerID); err != nil {
		return nil, err
	}

	record.X = pos.X.Handle()
	record.Y = pos.Y.Handle()
	record.Moves++
	record.UpdatedAt = c.clock.Now()
	if err := c.storage.SavePlayerRecord(ctx, record); err != nil {
		c.logger.Error("failed to save player record",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("player moved",
		slog.String("player_id", string(playerID)),
		slog.Int("moves", record.Moves),
	)
	c.emit(ctx, model.EventPlayerMoved, record)

	return record, nil
}

// GetPosition returns the encrypted position of a joined player
func (c *Controller) GetPosition(ctx context.Context, playerID model.PlayerID) (model.EncryptedPosition, error) {
	record, err := c.GetRecord(ctx, playerID)
	if err != nil {
		return model.EncryptedPosition{}, err
	}
	return record.Position(), nil
}

// GetRecord returns the full record of a joined player
func (c *Controller) GetRecord(ctx context.Context, playerID model.PlayerID) (*model.PlayerRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, err := c.storage.GetPlayerRecord(ctx, playerID)
	if errors.Is(err, model.ErrRecordNotFound) {
		return nil, model.ErrUnknownPlayer
	}
	if err != nil {
		return nil, err
	}
	if !record.Joined {
		return nil, model.ErrUnknownPlayer
	}
	return record, nil
}

// HasJoined reports whether the player has joined. Unknown players have not.
func (c *Controller) HasJoined(ctx context.Context, playerID model.PlayerID) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasJoined(ctx, playerID)
}

// BoardLimits returns the inclusive coordinate range
func (c *Controller) BoardLimits() (minCoord, maxCoord uint8) {
	return movement.Limits()
}

// PlayerCount returns how many players have joined
func (c *Controller) PlayerCount(ctx context.Context) (int, error) {
	return c.storage.CountPlayerRecords(ctx)
}

// Events returns persisted events starting at sequence number from
func (c *Controller) Events(ctx context.Context, from int64, limit int) ([]*model.Event, error) {
	return c.storage.ListEvents(ctx, from, limit)
}

func (c *Controller) hasJoined(ctx context.Context, playerID model.PlayerID) (bool, error) {
	record, err := c.storage.GetPlayerRecord(ctx, playerID)
	if errors.Is(err, model.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.Joined, nil
}

// grant keeps the contract and the player allowed on both coordinates
func (c *Controller) grant(ctx context.Context, pos model.EncryptedPosition, playerID model.PlayerID) error {
	for _, h := range []fhe.Handle{pos.X.Handle(), pos.Y.Handle()} {
		if err := c.exec.AllowThis(ctx, h); err != nil {
			return fmt.Errorf("allow contract: %w", err)
		}
		if err := c.exec.Allow(ctx, h, fhe.Account(playerID)); err != nil {
			return fmt.Errorf("allow player: %w", err)
		}
	}
	return nil
}

// emit records an event and hands it to the publisher. The state change
// is already committed, so failures are logged only.
func (c *Controller) emit(ctx context.Context, eventType model.EventType, record *model.PlayerRecord) {
	event := &model.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		PlayerID:  record.PlayerID,
		X:         record.X,
		Y:         record.Y,
		Timestamp: record.UpdatedAt,
	}
	if err := c.storage.AppendEvent(ctx, event); err != nil {
		c.logger.Error("failed to append event",
			slog.String("event_type", string(eventType)),
			slog.String("player_id", string(record.PlayerID)),
			slog.String("error", err.Error()),
		)
		return
	}
	if c.publisher != nil {
		c.publisher.Publish(ctx, event)
	}
}
