package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// bindJSON decodes a single JSON document from the body into v. Unknown
// fields are rejected. maxBytes caps the body when positive.
func bindJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return ErrUnsupportedMediaType
	}

	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ErrRequestEntityTooLarge
		case errors.Is(err, io.EOF):
			return badRequest(fmt.Errorf("%w: empty body", ErrInvalidJSON))
		default:
			return badRequest(fmt.Errorf("%w: %v", ErrInvalidJSON, err))
		}
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return badRequest(fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON))
	}
	return nil
}
