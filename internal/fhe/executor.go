package fhe

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/mcoot/hiddengrid/internal/dependencies/random"
)

// Executor evaluates operations on encrypted values. Plaintexts exist only
// inside a single call; every result is sealed, stored and returned as a
// new handle that the contract account is allowed on.
type Executor struct {
	keys     *Keyset
	store    Store
	random   random.Random
	contract Account
	logger   *slog.Logger
}

// NewExecutor creates an Executor acting on behalf of contract
func NewExecutor(keys *Keyset, store Store, random random.Random, contract Account, logger *slog.Logger) *Executor {
	return &Executor{
		keys:     keys,
		store:    store,
		random:   random,
		contract: contract,
		logger:   logger.With(slog.String("component", "fhe")),
	}
}

// Contract returns the account the executor computes for
func (e *Executor) Contract() Account {
	return e.contract
}

// Keys returns the network keyset
func (e *Executor) Keys() *Keyset {
	return e.keys
}

// TrivialEncrypt encrypts a public constant
func (e *Executor) TrivialEncrypt(ctx context.Context, v uint8) (Euint8, error) {
	h, err := e.put(ctx, TypeUint8, v)
	return Euint8{handle: h}, err
}

// Rand returns a uniformly random encrypted byte
func (e *Executor) Rand(ctx context.Context) (Euint8, error) {
	h, err := e.put(ctx, TypeUint8, e.random.Uint8())
	return Euint8{handle: h}, err
}

// AddScalar returns a + b, wrapping at 256
func (e *Executor) AddScalar(ctx context.Context, a Euint8, b uint8) (Euint8, error) {
	av, err := e.load(ctx, a.handle, TypeUint8)
	if err != nil {
		return Euint8{}, err
	}
	h, err := e.put(ctx, TypeUint8, av+b)
	return Euint8{handle: h}, err
}

// SubScalar returns a - b, wrapping below zero
func (e *Executor) SubScalar(ctx context.Context, a Euint8, b uint8) (Euint8, error) {
	av, err := e.load(ctx, a.handle, TypeUint8)
	if err != nil {
		return Euint8{}, err
	}
	h, err := e.put(ctx, TypeUint8, av-b)
	return Euint8{handle: h}, err
}

// RemScalar returns a mod m
func (e *Executor) RemScalar(ctx context.Context, a Euint8, m uint8) (Euint8, error) {
	if m == 0 {
		return Euint8{}, ErrDivisionByZero
	}
	av, err := e.load(ctx, a.handle, TypeUint8)
	if err != nil {
		return Euint8{}, err
	}
	h, err := e.put(ctx, TypeUint8, av%m)
	return Euint8{handle: h}, err
}

// EqScalar returns an encrypted a == b
func (e *Executor) EqScalar(ctx context.Context, a Euint8, b uint8) (Ebool, error) {
	av, err := e.load(ctx, a.handle, TypeUint8)
	if err != nil {
		return Ebool{}, err
	}
	h, err := e.put(ctx, TypeBool, uint8(subtle.ConstantTimeByteEq(av, b)))
	return Ebool{handle: h}, err
}

// Select returns ifTrue when cond holds and ifFalse otherwise. Both
// branches are loaded and the choice is a constant-time mask.
func (e *Executor) Select(ctx context.Context, cond Ebool, ifTrue, ifFalse Euint8) (Euint8, error) {
	c, err := e.load(ctx, cond.handle, TypeBool)
	if err != nil {
		return Euint8{}, err
	}
	tv, err := e.load(ctx, ifTrue.handle, TypeUint8)
	if err != nil {
		return Euint8{}, err
	}
	fv, err := e.load(ctx, ifFalse.handle, TypeUint8)
	if err != nil {
		return Euint8{}, err
	}
	selected := subtle.ConstantTimeSelect(int(c&1), int(tv), int(fv))
	h, err := e.put(ctx, TypeUint8, uint8(selected))
	return Euint8{handle: h}, err
}

// Allow grants account the right to use and decrypt h. The contract must
// already be allowed on h.
func (e *Executor) Allow(ctx context.Context, h Handle, account Account) error {
	ok, err := e.store.IsAllowed(ctx, h, e.contract)
	if err != nil {
		return err
	}
	if !ok {
		return ErrACLDenied
	}
	return e.store.Allow(ctx, h, account)
}

// AllowThis persists the contract's own permission on h
func (e *Executor) AllowThis(ctx context.Context, h Handle) error {
	return e.Allow(ctx, h, e.contract)
}

// IsAllowed reports whether account may use h
func (e *Executor) IsAllowed(ctx context.Context, h Handle, account Account) (bool, error) {
	return e.store.IsAllowed(ctx, h, account)
}

// Decrypt reveals the plaintext behind h to account, if the ACL allows it
func (e *Executor) Decrypt(ctx context.Context, h Handle, account Account) (uint8, error) {
	ok, err := e.store.IsAllowed(ctx, h, account)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrACLDenied
	}
	ct, err := e.store.GetCiphertext(ctx, h)
	if err != nil {
		return 0, err
	}
	return e.keys.open(h.Type(), ct)
}

// load opens an operand the contract is allowed on
func (e *Executor) load(ctx context.Context, h Handle, t Type) (uint8, error) {
	if h.Type() != t {
		return 0, ErrTypeMismatch
	}
	ok, err := e.store.IsAllowed(ctx, h, e.contract)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrACLDenied
	}
	ct, err := e.store.GetCiphertext(ctx, h)
	if err != nil {
		return 0, err
	}
	return e.keys.open(t, ct)
}

// put seals a result, stores it and allows the contract on it
func (e *Executor) put(ctx context.Context, t Type, v uint8) (Handle, error) {
	ct, err := e.keys.seal(t, v)
	if err != nil {
		return Handle{}, err
	}
	h := handleFor(t, ct)
	if err := e.store.SaveCiphertext(ctx, h, ct); err != nil {
		return Handle{}, err
	}
	if err := e.store.Allow(ctx, h, e.contract); err != nil {
		return Handle{}, err
	}
	return h, nil
}
