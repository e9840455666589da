package grid

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hiddengrid/internal/dependencies/mocks"
	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/movement"
	"github.com/mcoot/hiddengrid/internal/storage/memory"
	"github.com/mcoot/hiddengrid/internal/testutil"
)

const (
	alice model.PlayerID = "0x000000000000000000000000000000000000a11c"
	bob   model.PlayerID = "0x0000000000000000000000000000000000000b0b"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event *model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	exec       *fhe.Executor
	random     *mocks.MockRandom
	clock      *mocks.MockClock
	publisher  *recordingPublisher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.publisher = &recordingPublisher{}
	s.exec = testutil.NewExecutor(s.T(), s.storage, s.random)
	s.controller = NewController(s.storage, s.exec, movement.NewEngine(s.exec), s.publisher, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// input encrypts a direction the way a client would and verifies it
func (s *ControllerSuite) input(playerID model.PlayerID, dir uint8) (fhe.Handle, []byte) {
	sealed, err := fhe.SealInput(s.exec.Keys().InputPublicKey(), fhe.TypeUint8, dir)
	s.Require().NoError(err)
	h, proof, err := s.exec.VerifyInput(s.ctx, sealed, fhe.Account(playerID))
	s.Require().NoError(err)
	return h, proof
}

func (s *ControllerSuite) move(playerID model.PlayerID, dir model.Direction) {
	h, proof := s.input(playerID, uint8(dir))
	_, err := s.controller.Move(s.ctx, playerID, h, proof)
	s.Require().NoError(err)
}

// reveal decrypts a player's position as that player
func (s *ControllerSuite) reveal(playerID model.PlayerID) (uint8, uint8) {
	pos, err := s.controller.GetPosition(s.ctx, playerID)
	s.Require().NoError(err)
	x, err := s.exec.Decrypt(s.ctx, pos.X.Handle(), fhe.Account(playerID))
	s.Require().NoError(err)
	y, err := s.exec.Decrypt(s.ctx, pos.Y.Handle(), fhe.Account(playerID))
	s.Require().NoError(err)
	return x, y
}

// Join tests

func (s *ControllerSuite) TestJoinSpawnsWithinBoard() {
	s.random.QueueUint8(4, 19)

	record, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)
	s.True(record.Joined)
	s.Equal(0, record.Moves)

	x, y := s.reveal(alice)
	s.Equal(uint8(5), x)
	s.Equal(uint8(10), y)
}

func (s *ControllerSuite) TestJoinTwiceFails() {
	_, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)
	before, err := s.controller.GetPosition(s.ctx, alice)
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, alice)
	s.ErrorIs(err, model.ErrAlreadyJoined)

	after, err := s.controller.GetPosition(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(before, after)
	s.Len(s.publisher.events, 1)
}

func (s *ControllerSuite) TestJoinGrantsOnlyContractAndPlayer() {
	_, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)

	pos, err := s.controller.GetPosition(s.ctx, alice)
	s.Require().NoError(err)

	for _, h := range []fhe.Handle{pos.X.Handle(), pos.Y.Handle()} {
		for account, want := range map[fhe.Account]bool{
			testutil.Contract:  true,
			fhe.Account(alice): true,
			fhe.Account(bob):   false,
		} {
			ok, err := s.exec.IsAllowed(s.ctx, h, account)
			s.Require().NoError(err)
			s.Equal(want, ok, "account %s", account)
		}
	}

	_, err = s.exec.Decrypt(s.ctx, pos.X.Handle(), fhe.Account(bob))
	s.ErrorIs(err, fhe.ErrACLDenied)
}

func (s *ControllerSuite) TestJoinPublishesEvent() {
	record, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)

	s.Require().Len(s.publisher.events, 1)
	event := s.publisher.events[0]
	s.Equal(model.EventPlayerJoined, event.Type)
	s.Equal(alice, event.PlayerID)
	s.Equal(record.X, event.X)
	s.Equal(record.Y, event.Y)
	s.Equal(int64(1), event.Seq)
	s.NotEmpty(event.ID)

	logged, err := s.controller.Events(s.ctx, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(logged, 1)
	s.Equal(event.ID, logged[0].ID)
}

// Move tests

func (s *ControllerSuite) TestMoveBeforeJoinFails() {
	h, proof := s.input(alice, 0)

	_, err := s.controller.Move(s.ctx, alice, h, proof)
	s.ErrorIs(err, model.ErrNotJoined)

	joined, err := s.controller.HasJoined(s.ctx, alice)
	s.Require().NoError(err)
	s.False(joined)
	s.Empty(s.publisher.events)
}

func (s *ControllerSuite) TestMoveNotJoinedTakesPrecedenceOverBadProof() {
	_, err := s.controller.Move(s.ctx, alice, fhe.Handle{}, nil)
	s.ErrorIs(err, model.ErrNotJoined)
}

func (s *ControllerSuite) TestMoveAppliesDirection() {
	cases := []struct {
		dir   uint8
		wantX uint8
		wantY uint8
	}{
		{uint8(model.DirectionUp), 5, 6},
		{uint8(model.DirectionDown), 5, 4},
		{uint8(model.DirectionLeft), 4, 5},
		{uint8(model.DirectionRight), 6, 5},
		{6, 4, 5},
		{255, 6, 5},
	}
	for _, tc := range cases {
		s.SetupTest()
		s.random.QueueUint8(4, 4)
		_, err := s.controller.Join(s.ctx, alice)
		s.Require().NoError(err)

		h, proof := s.input(alice, tc.dir)
		record, err := s.controller.Move(s.ctx, alice, h, proof)
		s.Require().NoError(err)
		s.Equal(1, record.Moves)

		x, y := s.reveal(alice)
		s.Equal(tc.wantX, x, "dir %d", tc.dir)
		s.Equal(tc.wantY, y, "dir %d", tc.dir)
	}
}

func (s *ControllerSuite) TestMovesClampAtEdges() {
	s.random.QueueUint8(4, 4)
	_, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)

	for i := 0; i < 15; i++ {
		s.move(alice, model.DirectionUp)
	}
	for i := 0; i < 15; i++ {
		s.move(alice, model.DirectionLeft)
	}

	x, y := s.reveal(alice)
	s.Equal(model.MinCoord, x)
	s.Equal(model.MaxCoord, y)

	record, err := s.controller.GetRecord(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(30, record.Moves)
}

func (s *ControllerSuite) TestMoveRejectsProofForAnotherPlayer() {
	_, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, bob)
	s.Require().NoError(err)
	before, err := s.controller.GetPosition(s.ctx, alice)
	s.Require().NoError(err)

	h, proof := s.input(bob, 0)
	_, err = s.controller.Move(s.ctx, alice, h, proof)
	s.ErrorIs(err, fhe.ErrInvalidProof)

	after, err := s.controller.GetPosition(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *ControllerSuite) TestMovePublishesEvent() {
	_, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)

	s.move(alice, model.DirectionRight)

	s.Require().Len(s.publisher.events, 2)
	event := s.publisher.events[1]
	s.Equal(model.EventPlayerMoved, event.Type)
	s.Equal(int64(2), event.Seq)
	s.Equal(s.clock.Now(), event.Timestamp)
}

func (s *ControllerSuite) TestPlayersAreIndependent() {
	s.random.QueueUint8(0, 0, 9, 9)
	_, err := s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, bob)
	s.Require().NoError(err)

	s.move(alice, model.DirectionRight)

	x, y := s.reveal(bob)
	s.Equal(uint8(10), x)
	s.Equal(uint8(10), y)

	x, y = s.reveal(alice)
	s.Equal(uint8(2), x)
	s.Equal(uint8(1), y)
}

// Query tests

func (s *ControllerSuite) TestGetPositionUnknownPlayer() {
	_, err := s.controller.GetPosition(s.ctx, alice)
	s.ErrorIs(err, model.ErrUnknownPlayer)
}

func (s *ControllerSuite) TestHasJoined() {
	joined, err := s.controller.HasJoined(s.ctx, alice)
	s.Require().NoError(err)
	s.False(joined)

	_, err = s.controller.Join(s.ctx, alice)
	s.Require().NoError(err)

	joined, err = s.controller.HasJoined(s.ctx, alice)
	s.Require().NoError(err)
	s.True(joined)
}

func (s *ControllerSuite) TestBoardLimits() {
	lo, hi := s.controller.BoardLimits()
	s.Equal(uint8(1), lo)
	s.Equal(uint8(10), hi)
}

func (s *ControllerSuite) TestConcurrentJoinsAdmitOnce() {
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.controller.Join(s.ctx, alice)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrAlreadyJoined)
		}
	}
	s.Equal(1, succeeded)

	count, err := s.controller.PlayerCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}
