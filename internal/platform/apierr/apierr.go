package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP-equivalent status and a stable machine code through
// service boundaries.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Codes surfaced by the analysis core.
const (
	CodeRegionNotFound   = "region_not_found"
	CodeInvalidRequest   = "invalid_request"
	CodeStoreUnavailable = "store_unavailable"
	CodeStoreTimeout     = "store_timeout"
)

func RegionNotFound(name string) *Error {
	return New(http.StatusNotFound, CodeRegionNotFound, fmt.Errorf("geographic region %q not found", name))
}

// StatusOf maps any error to the status it should surface with. Unknown
// errors are treated as upstream failures, not client mistakes.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return "internal_error"
}
