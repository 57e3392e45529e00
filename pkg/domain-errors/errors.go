// Package domainerrors defines the coded errors services return to transport.
// Stores speak in sentinel errors; services translate those facts plus their own
// validation into one of the codes below, and the HTTP layer maps codes to
// statuses without inspecting anything else.
package domainerrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
	CodeUnavailable  Code = "unavailable"
)

// DomainError carries a machine-readable code and a human-readable description.
// The description is safe to return to clients for every code except
// CodeInternal, where transport omits it.
type DomainError struct {
	Code        Code
	Description string
}

func (e DomainError) Error() string {
	return string(e.Code) + ": " + e.Description
}

func New(code Code, description string) DomainError {
	return DomainError{Code: code, Description: description}
}

// Is reports whether err is a DomainError with the given code.
func Is(err error, code Code) bool {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for plain errors.
func CodeOf(err error) Code {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
