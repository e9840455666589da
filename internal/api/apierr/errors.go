package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/services/auth"
	"github.com/mcoot/hiddengrid/internal/services/relayer"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeInvalidPlayerID    = "INVALID_PLAYER_ID"
	CodeAlreadyJoined      = "ALREADY_JOINED"
	CodeNotJoined          = "NOT_JOINED"
	CodeUnknownPlayer      = "UNKNOWN_PLAYER"
	CodeInvalidProof       = "INVALID_PROOF"
	CodeInvalidHandle      = "INVALID_HANDLE"
	CodeTypeMismatch       = "TYPE_MISMATCH"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeHandleNotFound     = "HANDLE_NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Grid errors
	case errors.Is(err, model.ErrAlreadyJoined):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyJoined, "Player has already joined"}}
	case errors.Is(err, model.ErrNotJoined):
		return &httpError{http.StatusConflict, APIError{CodeNotJoined, "Player has not joined"}}
	case errors.Is(err, model.ErrUnknownPlayer):
		return &httpError{http.StatusNotFound, APIError{CodeUnknownPlayer, "Unknown player"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrInvalidPlayerID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayerID, "Player ID must be a 0x-prefixed 20-byte address"}}

	// Coprocessor errors
	case errors.Is(err, fhe.ErrInvalidProof):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidProof, "Input proof is invalid"}}
	case errors.Is(err, fhe.ErrMalformedHandle):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidHandle, "Handle must be 32 bytes of hex"}}
	case errors.Is(err, fhe.ErrTypeMismatch):
		return &httpError{http.StatusBadRequest, APIError{CodeTypeMismatch, "Handle has the wrong type"}}
	case errors.Is(err, fhe.ErrACLDenied):
		return &httpError{http.StatusForbidden, APIError{CodeAccessDenied, "Not allowed on this handle"}}
	case errors.Is(err, fhe.ErrCiphertextNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeHandleNotFound, "Handle not found"}}
	case errors.Is(err, relayer.ErrNoHandles), errors.Is(err, relayer.ErrTooManyHandles):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidDisplayName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
