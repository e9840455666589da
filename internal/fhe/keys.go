package fhe

import (
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const minSeedLength = 16

// Keyset holds the network key material derived from a single seed
type Keyset struct {
	aead      cipher.AEAD
	inputPub  [32]byte
	inputPriv [32]byte
	signer    ed25519.PrivateKey
	verifier  ed25519.PublicKey
}

// NewKeyset derives the ciphertext key, the input box keypair and the
// input proof signer from seed
func NewKeyset(seed []byte) (*Keyset, error) {
	if len(seed) < minSeedLength {
		return nil, ErrWeakSeed
	}

	ctKey, err := derive(seed, "hiddengrid/ciphertext", chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(ctKey)
	if err != nil {
		return nil, err
	}

	boxPriv, err := derive(seed, "hiddengrid/input", curve25519.ScalarSize)
	if err != nil {
		return nil, err
	}
	boxPub, err := curve25519.X25519(boxPriv, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	signSeed, err := derive(seed, "hiddengrid/proof", ed25519.SeedSize)
	if err != nil {
		return nil, err
	}
	signer := ed25519.NewKeyFromSeed(signSeed)

	ks := &Keyset{
		aead:     aead,
		signer:   signer,
		verifier: signer.Public().(ed25519.PublicKey),
	}
	copy(ks.inputPriv[:], boxPriv)
	copy(ks.inputPub[:], boxPub)
	return ks, nil
}

// InputPublicKey returns the key clients seal inputs to
func (k *Keyset) InputPublicKey() [32]byte {
	return k.inputPub
}

// ProofVerifier returns the public key that checks input proofs
func (k *Keyset) ProofVerifier() ed25519.PublicKey {
	return k.verifier
}

func (k *Keyset) seal(t Type, v uint8) ([]byte, error) {
	nonce := make([]byte, k.aead.NonceSize(), k.aead.NonceSize()+1+k.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return k.aead.Seal(nonce, nonce, []byte{v}, []byte{byte(t)}), nil
}

func (k *Keyset) open(t Type, ct []byte) (uint8, error) {
	ns := k.aead.NonceSize()
	if len(ct) < ns+k.aead.Overhead() {
		return 0, ErrTypeMismatch
	}
	pt, err := k.aead.Open(nil, ct[:ns], ct[ns:], []byte{byte(t)})
	if err != nil || len(pt) != 1 {
		return 0, ErrTypeMismatch
	}
	return pt[0], nil
}

// handleFor computes the content handle of a ciphertext
func handleFor(t Type, ct []byte) Handle {
	h := Handle(blake2b.Sum256(ct))
	h[30] = byte(t)
	h[31] = handleVersion
	return h
}

func derive(seed []byte, info string, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, seed, nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("derive %s: %w", info, err)
	}
	return out, nil
}
