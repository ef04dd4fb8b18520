package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON renders v with the given status.
func JSON(status int, v any) Response {
	return jsonResponse{status: status, body: v}
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// NoContent renders an empty 204.
func NoContent() Response {
	return emptyResponse{status: http.StatusNoContent}
}

// Error renders err inside the error envelope. HTTPError values choose the
// status; request errors keep their message; anything else is a 500 whose
// message does not leak internals.
func Error(err error) Response {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return JSON(reqErr.status.Code, ErrorBody{Error: ErrorDetail{Code: reqErr.status.Key, Message: reqErr.err.Error()}})
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return JSON(httpErr.Code, ErrorBody{Error: ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}})
	}

	return JSON(http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: http.StatusText(http.StatusInternalServerError),
	}})
}
