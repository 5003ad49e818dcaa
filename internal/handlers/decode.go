package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/finance-sync/internal/errs"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into v, reporting malformed input as a
// validation failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.NewValidationError("body", "invalid request body: "+err.Error())
	}
	return nil
}

// pathParam returns the unescaped URL parameter, so category names with
// spaces or slashes survive the round trip.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
