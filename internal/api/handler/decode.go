package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/hiddengrid/internal/api/request"
)

// maxBodyBytes bounds request bodies; the largest is a sealed input
const maxBodyBytes = 64 << 10

// decodeBody reads a JSON body into T and validates it. On failure the
// error response has already been written.
func decodeBody[T request.Validator](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return req, false
	}
	return req, true
}
