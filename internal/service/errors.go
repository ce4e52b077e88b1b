package service

import (
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func ValidationError(message string) *Error {
	return NewError(http.StatusBadRequest, "invalid_request", message)
}

func Unauthorized(message string) *Error {
	return NewError(http.StatusUnauthorized, "unauthorized", message)
}

func Forbidden(message string) *Error {
	return NewError(http.StatusForbidden, "forbidden", message)
}

func NotFound(message string) *Error {
	return NewError(http.StatusNotFound, "not_found", message)
}

func Conflict(message string) *Error {
	return NewError(http.StatusConflict, "conflict", message)
}

func Internal(message string) *Error {
	return NewError(http.StatusInternalServerError, "internal_error", message)
}

func ServiceUnavailable(message string) *Error {
	return NewError(http.StatusServiceUnavailable, "service_unavailable", message)
}
