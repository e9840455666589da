package fhe

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Type identifies the plaintext type behind a handle
type Type uint8

const (
	TypeBool  Type = 0
	TypeUint8 Type = 2
)

// handleVersion is stamped into the last byte of every handle
const handleVersion = 0

// HandleSize is the byte length of a handle
const HandleSize = 32

// ErrMalformedHandle is returned when a handle cannot be parsed
var ErrMalformedHandle = errors.New("malformed handle")

// Account identifies a party in the access control list
type Account string

// Handle references a stored ciphertext. Byte 30 carries the Type,
// byte 31 the handle version; the rest is a digest of the ciphertext.
type Handle [HandleSize]byte

// Type returns the plaintext type encoded in the handle
func (h Handle) Type() Type {
	return Type(h[30])
}

// IsZero reports whether the handle is unset
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// String returns the 0x-prefixed hex form
func (h Handle) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (h *Handle) UnmarshalText(text []byte) error {
	parsed, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHandle parses a hex handle with or without the 0x prefix
func ParseHandle(s string) (Handle, error) {
	var h Handle
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(raw) != HandleSize {
		return h, ErrMalformedHandle
	}
	copy(h[:], raw)
	return h, nil
}

// Euint8 is an encrypted 8-bit unsigned integer
type Euint8 struct {
	handle Handle
}

// Euint8FromHandle wraps a stored handle. The type is checked on first use.
func Euint8FromHandle(h Handle) Euint8 {
	return Euint8{handle: h}
}

// Handle returns the underlying ciphertext handle
func (v Euint8) Handle() Handle {
	return v.handle
}

// Ebool is an encrypted boolean
type Ebool struct {
	handle Handle
}

// Handle returns the underlying ciphertext handle
func (b Ebool) Handle() Handle {
	return b.handle
}
