package fhe

import (
	"context"
	"errors"
)

// Errors
var (
	ErrCiphertextNotFound = errors.New("ciphertext not found")
	ErrTypeMismatch       = errors.New("ciphertext type mismatch")
	ErrInvalidProof       = errors.New("invalid input proof")
	ErrACLDenied          = errors.New("account is not allowed on handle")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrWeakSeed           = errors.New("key seed must be at least 16 bytes")
)

// Store persists ciphertexts and the access control list
type Store interface {
	SaveCiphertext(ctx context.Context, h Handle, ct []byte) error
	GetCiphertext(ctx context.Context, h Handle) ([]byte, error)
	Allow(ctx context.Context, h Handle, account Account) error
	IsAllowed(ctx context.Context, h Handle, account Account) (bool, error)
}
