package storage

import (
	"context"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Ciphertexts and the access control list
	fhe.Store

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Grid record operations. Records are never deleted.
	SavePlayerRecord(ctx context.Context, record *model.PlayerRecord) error
	GetPlayerRecord(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error)
	CountPlayerRecords(ctx context.Context) (int, error)

	// Event log operations. AppendEvent assigns event.Seq.
	AppendEvent(ctx context.Context, event *model.Event) error
	ListEvents(ctx context.Context, fromSeq int64, limit int) ([]*model.Event, error)

	Close() error
}
