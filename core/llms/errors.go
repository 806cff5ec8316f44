package llms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ErrorKind is the category of a failed request. The category decides the
// user-facing copy, everything else about the failure is handled the same.
type ErrorKind string

const (
	// ErrorKindRateLimited means the endpoint rejected the request volume.
	ErrorKindRateLimited ErrorKind = "rate_limited"
	// ErrorKindQuotaExceeded means billing credits are exhausted.
	ErrorKindQuotaExceeded ErrorKind = "quota_exceeded"
	// ErrorKindTransport means the connection failed, either before any
	// response arrived or while reading the response body.
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindUpstream is any other non-success response.
	ErrorKindUpstream ErrorKind = "upstream"
	// ErrorKindUnknown is anything not otherwise classified.
	ErrorKindUnknown ErrorKind = "unknown"
)

const fallbackUpstreamMessage = "the assistant service returned an error"

// Error is a classified request failure.
type Error struct {
	Kind ErrorKind
	// StatusCode is the HTTP status of the response, zero if there was none.
	StatusCode int
	// Message is the endpoint's own message when it sent one, otherwise a
	// generic description of the failure.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (%d)", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k})
// works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Kind == e.Kind
}

// Title is a short heading for the failure category.
func (k ErrorKind) Title() string {
	switch k {
	case ErrorKindRateLimited:
		return "Rate limit reached"
	case ErrorKindQuotaExceeded:
		return "Credits exhausted"
	default:
		return "Assistant unavailable"
	}
}

// UserMessage is the category-appropriate copy shown to the user.
func (k ErrorKind) UserMessage() string {
	switch k {
	case ErrorKindRateLimited:
		return "Too many requests right now. Wait a moment and send your message again."
	case ErrorKindQuotaExceeded:
		return "The usage credits for this workspace are used up. Add credits to keep chatting."
	default:
		return "Something went wrong while talking to the assistant. Please try again."
	}
}

// UserMessage is the category-appropriate copy shown to the user.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}
	return e.Kind.UserMessage()
}

// ClassifyResponse classifies a non-success HTTP response. body is the
// (possibly empty) response body; it is parsed best-effort for an `error`
// field holding the endpoint's message.
func ClassifyResponse(statusCode int, body []byte) *Error {
	message := errorBodyMessage(body)

	switch statusCode {
	case http.StatusTooManyRequests:
		return &Error{Kind: ErrorKindRateLimited, StatusCode: statusCode, Message: message}
	case http.StatusPaymentRequired:
		return &Error{Kind: ErrorKindQuotaExceeded, StatusCode: statusCode, Message: message}
	}

	if message == "" {
		message = fallbackUpstreamMessage
		if text := http.StatusText(statusCode); text != "" {
			message += ": " + strings.ToLower(text)
		}
	}
	return &Error{Kind: ErrorKindUpstream, StatusCode: statusCode, Message: message}
}

// ClassifyError classifies a failure that did not come from a response
// status, e.g. a dial error or a broken body read. Errors that are already
// classified are returned as they are.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if isTransportError(err) {
		return &Error{Kind: ErrorKindTransport, Message: "connection to the assistant service failed", Err: err}
	}

	return &Error{Kind: ErrorKindUnknown, Message: "unexpected failure", Err: err}
}

func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// errorBodyMessage accepts both `{"error": "..."}` and the OpenAI style
// `{"error": {"message": "..."}}`.
func errorBodyMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var message string
	if err := json.Unmarshal(envelope.Error, &message); err == nil {
		return strings.TrimSpace(message)
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
