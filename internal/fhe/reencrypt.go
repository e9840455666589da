package fhe

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/nacl/box"
)

// ErrCannotOpen is returned when a sealed value does not open with the given keys
var ErrCannotOpen = errors.New("sealed value cannot be opened")

// GenerateUserKeypair creates an ephemeral keypair for user decryption
func GenerateUserKeypair() (pub, priv [32]byte, err error) {
	p, s, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return pub, priv, err
	}
	return *p, *s, nil
}

// SealForUser re-encrypts a plaintext to a user's public key
func SealForUser(userKey [32]byte, v uint8) ([]byte, error) {
	return box.SealAnonymous(nil, []byte{v}, &userKey, rand.Reader)
}

// OpenUserValue opens a value sealed with SealForUser
func OpenUserValue(sealed []byte, pub, priv [32]byte) (uint8, error) {
	msg, ok := box.OpenAnonymous(nil, sealed, &pub, &priv)
	if !ok || len(msg) != 1 {
		return 0, ErrCannotOpen
	}
	return msg[0], nil
}
