package movement

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/hiddengrid/internal/dependencies/mocks"
	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/storage/memory"
	"github.com/mcoot/hiddengrid/internal/testutil"
)

const contract fhe.Account = "0x00000000000000000000000000000000000c0de0"

// tracingEvaluator records the public shape of every call
type tracingEvaluator struct {
	inner Evaluator
	trace []string
}

func (t *tracingEvaluator) record(op string, scalar ...uint8) {
	t.trace = append(t.trace, fmt.Sprint(op, scalar))
}

func (t *tracingEvaluator) Rand(ctx context.Context) (fhe.Euint8, error) {
	t.record("rand")
	return t.inner.Rand(ctx)
}

func (t *tracingEvaluator) AddScalar(ctx context.Context, a fhe.Euint8, b uint8) (fhe.Euint8, error) {
	t.record("add", b)
	return t.inner.AddScalar(ctx, a, b)
}

func (t *tracingEvaluator) SubScalar(ctx context.Context, a fhe.Euint8, b uint8) (fhe.Euint8, error) {
	t.record("sub", b)
	return t.inner.SubScalar(ctx, a, b)
}

func (t *tracingEvaluator) RemScalar(ctx context.Context, a fhe.Euint8, m uint8) (fhe.Euint8, error) {
	t.record("rem", m)
	return t.inner.RemScalar(ctx, a, m)
}

func (t *tracingEvaluator) EqScalar(ctx context.Context, a fhe.Euint8, b uint8) (fhe.Ebool, error) {
	t.record("eq", b)
	return t.inner.EqScalar(ctx, a, b)
}

func (t *tracingEvaluator) Select(ctx context.Context, cond fhe.Ebool, ifTrue, ifFalse fhe.Euint8) (fhe.Euint8, error) {
	t.record("select")
	return t.inner.Select(ctx, cond, ifTrue, ifFalse)
}

type EngineSuite struct {
	suite.Suite
	exec   *fhe.Executor
	random *mocks.MockRandom
	tracer *tracingEvaluator
	engine *Engine
	ctx    context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	keys, err := fhe.NewKeyset([]byte("movement-test-seed-0123456789"))
	s.Require().NoError(err)

	s.random = mocks.NewMockRandom()
	s.exec = fhe.NewExecutor(keys, memory.New(), s.random, contract, testutil.NopLogger())
	s.tracer = &tracingEvaluator{inner: s.exec}
	s.engine = NewEngine(s.tracer)
	s.ctx = context.Background()
}

func (s *EngineSuite) position(x, y uint8) model.EncryptedPosition {
	ex, err := s.exec.TrivialEncrypt(s.ctx, x)
	s.Require().NoError(err)
	ey, err := s.exec.TrivialEncrypt(s.ctx, y)
	s.Require().NoError(err)
	return model.EncryptedPosition{X: ex, Y: ey}
}

func (s *EngineSuite) direction(d uint8) fhe.Euint8 {
	ed, err := s.exec.TrivialEncrypt(s.ctx, d)
	s.Require().NoError(err)
	return ed
}

func (s *EngineSuite) reveal(pos model.EncryptedPosition) (uint8, uint8) {
	x, err := s.exec.Decrypt(s.ctx, pos.X.Handle(), contract)
	s.Require().NoError(err)
	y, err := s.exec.Decrypt(s.ctx, pos.Y.Handle(), contract)
	s.Require().NoError(err)
	return x, y
}

// expectedStep is the plaintext movement rule
func expectedStep(x, y, dir uint8) (uint8, uint8) {
	switch model.Direction(dir % model.DirectionCount) {
	case model.DirectionUp:
		if y < model.MaxCoord {
			y++
		}
	case model.DirectionDown:
		if y > model.MinCoord {
			y--
		}
	case model.DirectionLeft:
		if x > model.MinCoord {
			x--
		}
	case model.DirectionRight:
		if x < model.MaxCoord {
			x++
		}
	}
	return x, y
}

func (s *EngineSuite) TestSpawnReducesDraws() {
	cases := []struct {
		draw uint8
		want uint8
	}{
		{0, 1},
		{9, 10},
		{10, 1},
		{123, 4},
		{255, 6},
	}
	for _, tc := range cases {
		s.random.Reset()
		s.random.QueueUint8(tc.draw, tc.draw)

		pos, err := s.engine.Spawn(s.ctx)
		s.Require().NoError(err)

		x, y := s.reveal(pos)
		s.Equal(tc.want, x, "draw %d", tc.draw)
		s.Equal(tc.want, y, "draw %d", tc.draw)
	}
}

func (s *EngineSuite) TestSpawnDrawsAxesIndependently() {
	s.random.QueueUint8(4, 250)

	pos, err := s.engine.Spawn(s.ctx)
	s.Require().NoError(err)

	x, y := s.reveal(pos)
	s.Equal(uint8(5), x)
	s.Equal(uint8(1), y)
}

func (s *EngineSuite) TestStepMatrix() {
	coords := []uint8{model.MinCoord, 2, 5, 9, model.MaxCoord}
	dirs := []uint8{0, 1, 2, 3, 4, 7, 254, 255}

	for _, x := range coords {
		for _, y := range coords {
			for _, d := range dirs {
				next, err := s.engine.Step(s.ctx, s.position(x, y), s.direction(d))
				s.Require().NoError(err)

				gotX, gotY := s.reveal(next)
				wantX, wantY := expectedStep(x, y, d)
				s.Equal(wantX, gotX, "x: from (%d,%d) dir %d", x, y, d)
				s.Equal(wantY, gotY, "y: from (%d,%d) dir %d", x, y, d)
			}
		}
	}
}

func (s *EngineSuite) TestStepChangesAtMostOneAxis() {
	for d := 0; d < 256; d++ {
		next, err := s.engine.Step(s.ctx, s.position(5, 5), s.direction(uint8(d)))
		s.Require().NoError(err)

		x, y := s.reveal(next)
		changed := 0
		if x != 5 {
			changed++
		}
		if y != 5 {
			changed++
		}
		s.Equal(1, changed, "dir %d", d)
	}
}

func (s *EngineSuite) TestClampIsIdempotent() {
	pos := s.position(model.MaxCoord, model.MaxCoord)
	for i := 0; i < 3; i++ {
		var err error
		pos, err = s.engine.Step(s.ctx, pos, s.direction(uint8(model.DirectionUp)))
		s.Require().NoError(err)
		pos, err = s.engine.Step(s.ctx, pos, s.direction(uint8(model.DirectionRight)))
		s.Require().NoError(err)
	}
	x, y := s.reveal(pos)
	s.Equal(model.MaxCoord, x)
	s.Equal(model.MaxCoord, y)
}

func (s *EngineSuite) TestStepTraceIsIndependentOfValues() {
	var reference []string
	for _, x := range []uint8{model.MinCoord, 6, model.MaxCoord} {
		for _, d := range []uint8{0, 1, 2, 3, 200} {
			pos := s.position(x, model.MaxCoord+1-x)
			dir := s.direction(d)

			s.tracer.trace = nil
			_, err := s.engine.Step(s.ctx, pos, dir)
			s.Require().NoError(err)

			if reference == nil {
				reference = s.tracer.trace
				continue
			}
			s.Equal(reference, s.tracer.trace, "from x=%d dir %d", x, d)
		}
	}
	s.NotEmpty(reference)
}

func (s *EngineSuite) TestStepPropagatesEvaluatorErrors() {
	_, err := s.engine.Step(s.ctx, model.EncryptedPosition{}, s.direction(0))
	s.ErrorIs(err, fhe.ErrTypeMismatch)
}

func TestLimits(t *testing.T) {
	lo, hi := Limits()
	if lo != 1 || hi != 10 {
		t.Errorf("Limits() = (%d, %d), want (1, 10)", lo, hi)
	}
}
