// Package relayer is the client-facing side of the coprocessor: it accepts
// encrypted inputs and hands plaintexts back to the accounts allowed to
// see them.
package relayer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
)

// Request errors
var (
	ErrNoHandles      = errors.New("no handles requested")
	ErrTooManyHandles = errors.New("too many handles requested")
)

// MaxDecryptHandles bounds a single decryption request
const MaxDecryptHandles = 16

// VerifiedInput is a handle ready to be submitted with its proof
type VerifiedInput struct {
	Handle fhe.Handle
	Proof  []byte
}

// SealedValue is a plaintext re-encrypted to a user key
type SealedValue struct {
	Handle fhe.Handle
	Sealed []byte
}

// Service relays inputs and decryption requests
type Service struct {
	exec   *fhe.Executor
	logger *slog.Logger
}

// New creates a relayer Service
func New(exec *fhe.Executor, logger *slog.Logger) *Service {
	return &Service{
		exec:   exec,
		logger: logger.With(slog.String("component", "relayer")),
	}
}

// PublicKey returns the key inputs must be sealed to
func (s *Service) PublicKey() [32]byte {
	return s.exec.Keys().InputPublicKey()
}

// Contract returns the account inputs are bound to
func (s *Service) Contract() fhe.Account {
	return s.exec.Contract()
}

// VerifyInput checks a sealed input from user and returns its handle and proof
func (s *Service) VerifyInput(ctx context.Context, sealed []byte, user model.PlayerID) (*VerifiedInput, error) {
	h, proof, err := s.exec.VerifyInput(ctx, sealed, fhe.Account(user))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("input verified",
		slog.String("player_id", string(user)),
		slog.String("handle", h.String()),
	)
	return &VerifiedInput{Handle: h, Proof: proof}, nil
}

// EncryptFor seals v on behalf of user and verifies it. Used by callers
// that cannot encrypt locally.
func (s *Service) EncryptFor(ctx context.Context, v uint8, user model.PlayerID) (*VerifiedInput, error) {
	sealed, err := fhe.SealInput(s.PublicKey(), fhe.TypeUint8, v)
	if err != nil {
		return nil, err
	}
	return s.VerifyInput(ctx, sealed, user)
}

// UserDecrypt returns the plaintexts of handles the user is allowed on.
// Fails as a whole if any handle is not allowed.
func (s *Service) UserDecrypt(ctx context.Context, handles []fhe.Handle, user model.PlayerID) ([]uint8, error) {
	if err := checkHandles(handles); err != nil {
		return nil, err
	}
	values := make([]uint8, 0, len(handles))
	for _, h := range handles {
		v, err := s.exec.Decrypt(ctx, h, fhe.Account(user))
		if err != nil {
			s.logger.Warn("user decryption refused",
				slog.String("player_id", string(user)),
				slog.String("handle", h.String()),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// UserDecryptSealed is UserDecrypt with each value sealed to userKey, so
// plaintexts never cross the wire
func (s *Service) UserDecryptSealed(ctx context.Context, handles []fhe.Handle, user model.PlayerID, userKey [32]byte) ([]SealedValue, error) {
	values, err := s.UserDecrypt(ctx, handles, user)
	if err != nil {
		return nil, err
	}
	sealed := make([]SealedValue, len(values))
	for i, v := range values {
		ct, err := fhe.SealForUser(userKey, v)
		if err != nil {
			return nil, err
		}
		sealed[i] = SealedValue{Handle: handles[i], Sealed: ct}
	}
	return sealed, nil
}

func checkHandles(handles []fhe.Handle) error {
	if len(handles) == 0 {
		return ErrNoHandles
	}
	if len(handles) > MaxDecryptHandles {
		return ErrTooManyHandles
	}
	return nil
}
