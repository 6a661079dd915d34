package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is a non-2xx answer from the backend.
type Error struct {
	StatusCode int
	// Detail is the backend's "detail" field. Non-string details (validation
	// error lists) are kept as compact JSON.
	Detail string
	// Body is the raw response body, used for text heuristics.
	Body string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Body: string(body)}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return e
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		e.Detail = s
		return e
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload.Detail); err == nil && buf.String() != "null" {
		e.Detail = buf.String()
	}
	return e
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// Detail returns the backend detail message carried by err, or "".
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

// BodyContains reports whether the body of the *Error in err contains any of
// the phrases, case-insensitively.
func BodyContains(err error, phrases ...string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	body := strings.ToLower(e.Body)
	for _, p := range phrases {
		if strings.Contains(body, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
