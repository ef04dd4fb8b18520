package httpapi

import (
	"errors"
	"net/http"
)

// HTTPError carries a status code and a stable machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	return e.Key
}

var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrMethodNotAllowed      = HTTPError{Code: http.StatusMethodNotAllowed, Key: "method_not_allowed"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
	ErrUnsupportedMediaType  = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity   = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrTooManyRequests       = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternalServerError   = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable    = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}

	ErrFormNotFound = HTTPError{Code: http.StatusNotFound, Key: "form_not_found"}
)

// Request decoding and checking errors. They map to 4xx responses.
var (
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrMissingType    = errors.New("type is required")
	ErrEmptySchema    = errors.New("schema must list at least one field")
	ErrEmptyFieldName = errors.New("schema field name is required")
	ErrDuplicateField = errors.New("schema field is listed twice")
)

// requestError wraps a decoding or checking error with the HTTPError that
// decides the response status.
type requestError struct {
	status HTTPError
	err    error
}

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return requestError{status: ErrBadRequest, err: err}
}

func unprocessable(err error) error {
	return requestError{status: ErrUnprocessableEntity, err: err}
}
