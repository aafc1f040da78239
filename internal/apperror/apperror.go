// Package apperror carries the error taxonomy shared by the HTTP services and
// maps it onto status codes and the `{"detail": ...}` response body.
package apperror

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type Kind int

const (
	Unexpected Kind = iota
	Validation
	NotFound
	Conflict
	InvalidState
	Unauthorized
	// Upstream is a failure of a service this one proxies to.
	Upstream
)

// Error is a classified failure with a client-safe detail message.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(detail string) *Error   { return &Error{Kind: Validation, Detail: detail} }
func NewNotFound(detail string) *Error     { return &Error{Kind: NotFound, Detail: detail} }
func NewConflict(detail string) *Error     { return &Error{Kind: Conflict, Detail: detail} }
func NewInvalidState(detail string) *Error { return &Error{Kind: InvalidState, Detail: detail} }
func NewUnauthorized(detail string) *Error { return &Error{Kind: Unauthorized, Detail: detail} }

// NewUpstream keeps err as the cause; detail is sent to clients.
func NewUpstream(detail string, err error) *Error {
	return &Error{Kind: Upstream, Detail: detail, Err: err}
}

// Wrap marks err as an unexpected failure. The cause is never sent to clients.
func Wrap(err error, detail string) *Error {
	return &Error{Kind: Unexpected, Detail: detail, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, Unexpected otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Status maps err onto an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case Validation, Conflict, InvalidState:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Detail is the message safe to show to clients.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Unexpected {
		return e.Detail
	}
	return "Internal server error"
}

// Body is the error response payload.
type Body struct {
	Detail string `json:"detail"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write responds with err's status and detail. Server side failures are
// logged with their cause; client errors at debug level.
func Write(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		logger.Errorw("request failed", "err", err)
	} else {
		logger.Debugw("request rejected", "status", status, "err", err)
	}
	WriteJSON(w, status, Body{Detail: Detail(err)})
}
