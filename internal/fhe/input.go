package fhe

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"log/slog"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/box"
)

// SealInput encrypts a plaintext to the network input key. This runs on
// the client; the result is submitted for verification.
func SealInput(networkKey [32]byte, t Type, v uint8) ([]byte, error) {
	return box.SealAnonymous(nil, []byte{byte(t), v}, &networkKey, rand.Reader)
}

// VerifyInput checks a sealed client input, stores it under the network
// key and returns its handle together with a proof binding the handle to
// the contract and user. The handle is not usable until FromExternal.
func (e *Executor) VerifyInput(ctx context.Context, sealed []byte, user Account) (Handle, []byte, error) {
	msg, ok := box.OpenAnonymous(nil, sealed, &e.keys.inputPub, &e.keys.inputPriv)
	if !ok || len(msg) != 2 {
		e.logger.Debug("rejected malformed input", slog.String("user", string(user)))
		return Handle{}, nil, ErrInvalidProof
	}

	t, v := Type(msg[0]), msg[1]
	switch t {
	case TypeUint8:
	case TypeBool:
		if v > 1 {
			return Handle{}, nil, ErrInvalidProof
		}
	default:
		return Handle{}, nil, ErrInvalidProof
	}

	ct, err := e.keys.seal(t, v)
	if err != nil {
		return Handle{}, nil, err
	}
	h := handleFor(t, ct)
	if err := e.store.SaveCiphertext(ctx, h, ct); err != nil {
		return Handle{}, nil, err
	}

	proof := ed25519.Sign(e.keys.signer, proofDigest(h, e.contract, user))
	return h, proof, nil
}

// FromExternal accepts a verified input handle submitted by user and
// allows the contract on it
func (e *Executor) FromExternal(ctx context.Context, h Handle, proof []byte, user Account) (Euint8, error) {
	if h.Type() != TypeUint8 {
		return Euint8{}, ErrTypeMismatch
	}
	if len(proof) != ed25519.SignatureSize || !ed25519.Verify(e.keys.verifier, proofDigest(h, e.contract, user), proof) {
		return Euint8{}, ErrInvalidProof
	}
	if _, err := e.store.GetCiphertext(ctx, h); err != nil {
		if errors.Is(err, ErrCiphertextNotFound) {
			return Euint8{}, ErrInvalidProof
		}
		return Euint8{}, err
	}
	if err := e.store.Allow(ctx, h, e.contract); err != nil {
		return Euint8{}, err
	}
	return Euint8{handle: h}, nil
}

func proofDigest(h Handle, contract, user Account) []byte {
	buf := make([]byte, 0, HandleSize+len(contract)+len(user)+2)
	buf = append(buf, h[:]...)
	buf = append(buf, 0)
	buf = append(buf, string(contract)...)
	buf = append(buf, 0)
	buf = append(buf, string(user)...)
	sum := blake2b.Sum256(buf)
	return sum[:]
}
