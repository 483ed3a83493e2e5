package annotated

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// StatusCoder is implemented by errors that choose their response status.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is an error answered with a fixed status.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewHTTPError returns an HTTPError. An empty message defaults to the
// status text.
func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// StatusCode implements StatusCoder.
func (e *HTTPError) StatusCode() int { return e.Status }

// errorBody is written for every failed call.
type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps err to a response status. Context errors map to 503 and
// 504; anything without a StatusCoder is 500.
func statusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code < 600 {
			return code
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// writeResult encodes the handler result. A Future is awaited first.
// Strings are written as text, byte slices as an octet stream, a
// fmt.Stringer that cannot be marshaled as text, and everything else as
// JSON.
func writeResult(ctx context.Context, w http.ResponseWriter, v any, produces string) {
	if a, ok := v.(awaiter); ok {
		res, err := a.awaitAny(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		v = res
	}

	switch t := v.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case string:
		writeBytes(w, contentTypeOr(produces, "text/plain; charset=utf-8"), []byte(t))
	case []byte:
		writeBytes(w, contentTypeOr(produces, "application/octet-stream"), t)
	case json.RawMessage:
		writeBytes(w, contentTypeOr(produces, "application/json; charset=utf-8"), t)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			if s, ok := v.(fmt.Stringer); ok {
				writeBytes(w, contentTypeOr(produces, "text/plain; charset=utf-8"), []byte(s.String()))
				return
			}
			writeError(w, fmt.Errorf("annotated: encode response: %w", err))
			return
		}
		writeBytes(w, contentTypeOr(produces, "application/json; charset=utf-8"), append(data, '\n'))
	}
}

func contentTypeOr(produces, fallback string) string {
	if produces != "" {
		return produces
	}
	return fallback
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
