// Package request holds the JSON bodies the API accepts.
package request

import "errors"

// Validator is implemented by every request body. The message of the
// returned error is shown to the client.
type Validator interface {
	Validate() error
}

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

func (r CreateGuestRequest) Validate() error {
	if r.DisplayName == "" {
		return errors.New("display_name is required")
	}
	return nil
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (r RegisterRequest) Validate() error {
	return requireCredentials(r.Username, r.Password)
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return requireCredentials(r.Username, r.Password)
}

func requireCredentials(username, password string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if password == "" {
		return errors.New("password is required")
	}
	return nil
}

// MoveRequest submits an encrypted direction. Handle is hex, Proof base64.
type MoveRequest struct {
	Handle string `json:"handle"`
	Proof  string `json:"proof"`
}

func (r MoveRequest) Validate() error {
	if r.Handle == "" || r.Proof == "" {
		return errors.New("handle and proof are required")
	}
	return nil
}

// InputRequest submits a client-sealed input (base64) for verification
type InputRequest struct {
	Ciphertext string `json:"ciphertext"`
}

func (r InputRequest) Validate() error {
	if r.Ciphertext == "" {
		return errors.New("ciphertext is required")
	}
	return nil
}

// DecryptRequest asks for the plaintexts behind handles. With PublicKey
// (hex) the values come back sealed to that key.
type DecryptRequest struct {
	Handles   []string `json:"handles"`
	PublicKey string   `json:"public_key,omitempty"`
}

// Validate leaves the handle count to the relayer, which owns the limits
func (r DecryptRequest) Validate() error {
	return nil
}
