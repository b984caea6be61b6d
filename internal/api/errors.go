package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches any 401 response
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches any 404 response
	ErrNotFound = errors.New("not found")
	// ErrNetwork wraps transport failures and timeouts. The operation was not applied and is safe to retry.
	ErrNetwork = errors.New("network error")
)

// MsgNetwork is shown in place of transport errors, which carry the backend address
const MsgNetwork = "Network error, please try again."

// ErrorDetail is the backend's `detail` payload: either StringDetail or FieldErrors
type ErrorDetail interface {
	Message() string
	detail()
}

// StringDetail is a plain error message from the backend
type StringDetail string

// Message returns the message verbatim
func (d StringDetail) Message() string { return string(d) }
func (StringDetail) detail()           {}

// FieldError is one field-level validation failure
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors is the list form of `detail` returned for request validation failures
type FieldErrors []FieldError

// Message joins entries as "<field>: <msg>", comma separated
func (d FieldErrors) Message() string {
	parts := make([]string, 0, len(d))
	for _, fe := range d {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, ", ")
}
func (FieldErrors) detail() {}

// APIError is a non-2xx response from the backend
type APIError struct {
	Status int
	Detail ErrorDetail
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message()
}

// Message returns the display string for the error
func (e *APIError) Message() string {
	if e.Detail != nil {
		if msg := e.Detail.Message(); msg != "" {
			return msg
		}
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Is allows errors.Is() to match ErrUnauthorized and ErrNotFound
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type rawFieldError struct {
	Loc     []any  `json:"loc"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// ParseDetail decodes an error response body. It returns nil when the body carries no usable detail.
func ParseDetail(body []byte) ErrorDetail {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return StringDetail(s)
	}

	var list []rawFieldError
	if err := json.Unmarshal(eb.Detail, &list); err == nil {
		out := make(FieldErrors, 0, len(list))
		for _, fe := range list {
			out = append(out, fe.normalize())
		}
		return out
	}

	var single rawFieldError
	if err := json.Unmarshal(eb.Detail, &single); err == nil && (single.Msg != "" || single.Message != "") {
		return FieldErrors{single.normalize()}
	}

	return nil
}

func (fe rawFieldError) normalize() FieldError {
	out := FieldError{Message: fe.Msg}
	if out.Message == "" {
		out.Message = fe.Message
	}
	if len(fe.Loc) > 0 {
		out.Field = fmt.Sprint(fe.Loc[len(fe.Loc)-1])
	}
	return out
}

// Message extracts a human readable message from any error, using fallback when there is none.
// Transport failures all read as MsgNetwork.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if errors.Is(err, ErrNetwork) {
		return MsgNetwork
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
