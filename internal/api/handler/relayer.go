package handler

import (
	"encoding/base64"
	"encoding/hex"
	"net/http"

	"github.com/mcoot/hiddengrid/internal/api/middleware"
	"github.com/mcoot/hiddengrid/internal/api/request"
	"github.com/mcoot/hiddengrid/internal/api/response"
	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/services/relayer"
)

// RelayerHandler exposes input verification and user decryption
type RelayerHandler struct {
	relayer *relayer.Service
}

// NewRelayerHandler creates a new relayer handler
func NewRelayerHandler(relayer *relayer.Service) *RelayerHandler {
	return &RelayerHandler{relayer: relayer}
}

// Keys handles GET /api/v1/relayer/keys
func (h *RelayerHandler) Keys(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RelayerKeysFrom(h.relayer.PublicKey(), string(h.relayer.Contract())))
}

// VerifyInput handles POST /api/v1/relayer/inputs
func (h *RelayerHandler) VerifyInput(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	req, ok := decodeBody[request.InputRequest](w, r)
	if !ok {
		return
	}
	sealed, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil || len(sealed) == 0 {
		WriteError(w, NewInvalidRequestError("ciphertext must be non-empty base64"))
		return
	}

	input, err := h.relayer.VerifyInput(r.Context(), sealed, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.VerifiedInputFrom(input))
}

// Decrypt handles POST /api/v1/relayer/decrypt
func (h *RelayerHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	req, ok := decodeBody[request.DecryptRequest](w, r)
	if !ok {
		return
	}

	handles := make([]fhe.Handle, len(req.Handles))
	for i, s := range req.Handles {
		parsed, err := fhe.ParseHandle(s)
		if err != nil {
			WriteError(w, err)
			return
		}
		handles[i] = parsed
	}

	if req.PublicKey == "" {
		values, err := h.relayer.UserDecrypt(r.Context(), handles, player.ID)
		if err != nil {
			WriteError(w, err)
			return
		}
		resp := response.Decryption{Values: make([]response.DecryptedValue, len(values))}
		for i, v := range values {
			v := v
			resp.Values[i] = response.DecryptedValue{Handle: handles[i].String(), Value: &v}
		}
		response.JSON(w, http.StatusOK, resp)
		return
	}

	var userKey [32]byte
	raw, err := hex.DecodeString(req.PublicKey)
	if err != nil || len(raw) != len(userKey) {
		WriteError(w, NewInvalidRequestError("public_key must be 32 bytes of hex"))
		return
	}
	copy(userKey[:], raw)

	sealed, err := h.relayer.UserDecryptSealed(r.Context(), handles, player.ID, userKey)
	if err != nil {
		WriteError(w, err)
		return
	}
	resp := response.Decryption{Values: make([]response.DecryptedValue, len(sealed))}
	for i, s := range sealed {
		resp.Values[i] = response.DecryptedValue{
			Handle: s.Handle.String(),
			Sealed: base64.StdEncoding.EncodeToString(s.Sealed),
		}
	}
	response.JSON(w, http.StatusOK, resp)
}
