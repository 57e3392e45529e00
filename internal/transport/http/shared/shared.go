// Package shared holds the response helpers every handler uses so error
// envelopes stay consistent across the API.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	dErrors "confide/pkg/domain-errors"
)

// WriteJSON writes v with the given status. Encoding failures are ignored at
// this point; the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. The
// description is omitted for internal errors so storage details never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	var de dErrors.DomainError
	if code != dErrors.CodeInternal && errors.As(err, &de) && de.Description != "" {
		body["error_description"] = de.Description
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// Pagination reads 1-based page/size query parameters with the API defaults.
func Pagination(r *http.Request) (page, size int) {
	page, size = 1, 10
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && n > 0 {
		size = n
	}
	return page, size
}
