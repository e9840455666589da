// Package movement computes spawn points and moves over encrypted
// coordinates. Every call runs the same sequence of evaluator operations
// regardless of the values involved.
package movement

import (
	"context"
	"fmt"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
)

// Evaluator is the subset of the coprocessor the engine computes with
type Evaluator interface {
	Rand(ctx context.Context) (fhe.Euint8, error)
	AddScalar(ctx context.Context, a fhe.Euint8, b uint8) (fhe.Euint8, error)
	SubScalar(ctx context.Context, a fhe.Euint8, b uint8) (fhe.Euint8, error)
	RemScalar(ctx context.Context, a fhe.Euint8, m uint8) (fhe.Euint8, error)
	EqScalar(ctx context.Context, a fhe.Euint8, b uint8) (fhe.Ebool, error)
	Select(ctx context.Context, cond fhe.Ebool, ifTrue, ifFalse fhe.Euint8) (fhe.Euint8, error)
}

// Engine applies the grid movement rules
type Engine struct {
	eval Evaluator
}

// NewEngine creates an Engine backed by eval
func NewEngine(eval Evaluator) *Engine {
	return &Engine{eval: eval}
}

// Spawn draws a fresh position with each coordinate in [MinCoord, MaxCoord]
func (e *Engine) Spawn(ctx context.Context) (model.EncryptedPosition, error) {
	x, err := e.spawnCoord(ctx)
	if err != nil {
		return model.EncryptedPosition{}, fmt.Errorf("spawn x: %w", err)
	}
	y, err := e.spawnCoord(ctx)
	if err != nil {
		return model.EncryptedPosition{}, fmt.Errorf("spawn y: %w", err)
	}
	return model.EncryptedPosition{X: x, Y: y}, nil
}

func (e *Engine) spawnCoord(ctx context.Context) (fhe.Euint8, error) {
	r, err := e.eval.Rand(ctx)
	if err != nil {
		return fhe.Euint8{}, err
	}
	r, err = e.eval.RemScalar(ctx, r, model.MaxCoord)
	if err != nil {
		return fhe.Euint8{}, err
	}
	return e.eval.AddScalar(ctx, r, model.MinCoord)
}

// Step moves pos one cell in direction dir mod 4, clamped to the board.
// Exactly one axis can change.
func (e *Engine) Step(ctx context.Context, pos model.EncryptedPosition, dir fhe.Euint8) (model.EncryptedPosition, error) {
	d, err := e.eval.RemScalar(ctx, dir, model.DirectionCount)
	if err != nil {
		return model.EncryptedPosition{}, fmt.Errorf("reduce direction: %w", err)
	}

	var is [model.DirectionCount]fhe.Ebool
	for code := range is {
		is[code], err = e.eval.EqScalar(ctx, d, uint8(code))
		if err != nil {
			return model.EncryptedPosition{}, fmt.Errorf("compare direction: %w", err)
		}
	}

	y, err := e.axis(ctx, pos.Y, is[model.DirectionUp], is[model.DirectionDown])
	if err != nil {
		return model.EncryptedPosition{}, fmt.Errorf("move y: %w", err)
	}
	x, err := e.axis(ctx, pos.X, is[model.DirectionRight], is[model.DirectionLeft])
	if err != nil {
		return model.EncryptedPosition{}, fmt.Errorf("move x: %w", err)
	}
	return model.EncryptedPosition{X: x, Y: y}, nil
}

// axis returns c+1 when inc holds, c-1 when dec holds, c otherwise, with
// both candidates clamped to the board
func (e *Engine) axis(ctx context.Context, c fhe.Euint8, inc, dec fhe.Ebool) (fhe.Euint8, error) {
	atMax, err := e.eval.EqScalar(ctx, c, model.MaxCoord)
	if err != nil {
		return fhe.Euint8{}, err
	}
	atMin, err := e.eval.EqScalar(ctx, c, model.MinCoord)
	if err != nil {
		return fhe.Euint8{}, err
	}
	plus, err := e.eval.AddScalar(ctx, c, 1)
	if err != nil {
		return fhe.Euint8{}, err
	}
	minus, err := e.eval.SubScalar(ctx, c, 1)
	if err != nil {
		return fhe.Euint8{}, err
	}
	up, err := e.eval.Select(ctx, atMax, c, plus)
	if err != nil {
		return fhe.Euint8{}, err
	}
	down, err := e.eval.Select(ctx, atMin, c, minus)
	if err != nil {
		return fhe.Euint8{}, err
	}
	moved, err := e.eval.Select(ctx, dec, down, c)
	if err != nil {
		return fhe.Euint8{}, err
	}
	return e.eval.Select(ctx, inc, up, moved)
}

// Limits returns the inclusive board bounds
func Limits() (minCoord, maxCoord uint8) {
	return model.MinCoord, model.MaxCoord
}
