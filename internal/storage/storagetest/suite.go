// Package storagetest holds the behavior every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/storage"
)

// Suite runs the shared storage behavior against the backend built by New
type Suite struct {
	suite.Suite

	// New returns an empty backend for each test
	New func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Storage = s.New()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func handle(b byte, t fhe.Type) fhe.Handle {
	var h fhe.Handle
	h[0] = b
	h[30] = byte(t)
	return h
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "0xaaaa",
		DisplayName: "Alice",
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "0xaaaa")
	s.Require().NoError(err)
	s.Equal(player.DisplayName, retrieved.DisplayName)
	s.True(player.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "0xnone")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{
		PlayerID:     "0xaaaa",
		Username:     "alice",
		PasswordHash: "hash123",
	}
	s.Require().NoError(s.Storage.SaveRegisteredPlayer(s.Ctx, rp))

	byID, err := s.Storage.GetRegisteredPlayer(s.Ctx, "0xaaaa")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	byName, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("0xaaaa"), byName.PlayerID)

	_, err = s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Grid record tests

func (s *Suite) TestSaveAndGetPlayerRecord() {
	record := &model.PlayerRecord{
		PlayerID: "0xaaaa",
		Joined:   true,
		X:        handle(1, fhe.TypeUint8),
		Y:        handle(2, fhe.TypeUint8),
		Moves:    3,
	}
	s.Require().NoError(s.Storage.SavePlayerRecord(s.Ctx, record))

	retrieved, err := s.Storage.GetPlayerRecord(s.Ctx, "0xaaaa")
	s.Require().NoError(err)
	s.True(retrieved.Joined)
	s.Equal(record.X, retrieved.X)
	s.Equal(record.Y, retrieved.Y)
	s.Equal(3, retrieved.Moves)
}

func (s *Suite) TestGetPlayerRecordNotFound() {
	_, err := s.Storage.GetPlayerRecord(s.Ctx, "0xnone")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *Suite) TestSavePlayerRecordOverwrites() {
	record := &model.PlayerRecord{PlayerID: "0xaaaa", Joined: true, X: handle(1, fhe.TypeUint8)}
	s.Require().NoError(s.Storage.SavePlayerRecord(s.Ctx, record))

	record.X = handle(9, fhe.TypeUint8)
	record.Moves = 1
	s.Require().NoError(s.Storage.SavePlayerRecord(s.Ctx, record))

	retrieved, err := s.Storage.GetPlayerRecord(s.Ctx, "0xaaaa")
	s.Require().NoError(err)
	s.Equal(handle(9, fhe.TypeUint8), retrieved.X)

	count, err := s.Storage.CountPlayerRecords(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// Ciphertext and ACL tests

func (s *Suite) TestSaveAndGetCiphertext() {
	h := handle(7, fhe.TypeUint8)
	s.Require().NoError(s.Storage.SaveCiphertext(s.Ctx, h, []byte{1, 2, 3}))

	ct, err := s.Storage.GetCiphertext(s.Ctx, h)
	s.Require().NoError(err)
	s.Equal([]byte{1, 2, 3}, ct)
}

func (s *Suite) TestGetCiphertextNotFound() {
	_, err := s.Storage.GetCiphertext(s.Ctx, handle(8, fhe.TypeUint8))
	s.ErrorIs(err, fhe.ErrCiphertextNotFound)
}

func (s *Suite) TestAllowIsPerAccountAndHandle() {
	h1 := handle(1, fhe.TypeUint8)
	h2 := handle(2, fhe.TypeUint8)

	s.Require().NoError(s.Storage.Allow(s.Ctx, h1, "0xaaaa"))
	s.Require().NoError(s.Storage.Allow(s.Ctx, h1, "0xaaaa")) // idempotent

	ok, err := s.Storage.IsAllowed(s.Ctx, h1, "0xaaaa")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.Storage.IsAllowed(s.Ctx, h1, "0xbbbb")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.Storage.IsAllowed(s.Ctx, h2, "0xaaaa")
	s.Require().NoError(err)
	s.False(ok)
}

// Event log tests

func (s *Suite) TestAppendEventAssignsSequence() {
	for i := 0; i < 3; i++ {
		event := &model.Event{ID: "e", Type: model.EventPlayerMoved, PlayerID: "0xaaaa"}
		s.Require().NoError(s.Storage.AppendEvent(s.Ctx, event))
		s.Equal(int64(i+1), event.Seq)
	}
}

func (s *Suite) TestListEvents() {
	types := []model.EventType{model.EventPlayerJoined, model.EventPlayerMoved, model.EventPlayerMoved}
	for _, et := range types {
		s.Require().NoError(s.Storage.AppendEvent(s.Ctx, &model.Event{Type: et, PlayerID: "0xaaaa", X: handle(1, fhe.TypeUint8)}))
	}

	all, err := s.Storage.ListEvents(s.Ctx, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(model.EventPlayerJoined, all[0].Type)
	s.Equal(handle(1, fhe.TypeUint8), all[0].X)

	tail, err := s.Storage.ListEvents(s.Ctx, 2, 1)
	s.Require().NoError(err)
	s.Require().Len(tail, 1)
	s.Equal(int64(2), tail[0].Seq)

	none, err := s.Storage.ListEvents(s.Ctx, 10, 0)
	s.Require().NoError(err)
	s.Empty(none)
}
