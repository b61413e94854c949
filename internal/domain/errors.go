package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("travel: not found")
	ErrUnauthorized = errors.New("travel: unauthorized")
	ErrForbidden    = errors.New("travel: forbidden")
	ErrTransport    = errors.New("travel: transport failure")
	ErrNoToken      = errors.New("travel: not signed in")
	ErrDuplicate    = errors.New("travel: already recorded")
	ErrNoResults    = errors.New("travel: nothing matched the search")
)

// ValidationError is raised locally, before any request leaves the client.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Msg
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// ServiceError is a non-2xx answer from the travel service.
// Message is whatever the service put in its error body.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("travel service: status %d", e.Status)
	}
	return fmt.Sprintf("travel service: status %d: %s", e.Status, e.Message)
}

func (e *ServiceError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// UserMessage turns any error from the client stack into the text shown to the user.
// fallback is used when the error carries nothing presentable.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	if errors.Is(err, ErrNoToken) {
		return "Please sign in to continue."
	}
	var se *ServiceError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		if se.Status == http.StatusUnauthorized {
			return "Your session has expired. Please sign in again."
		}
		return fallback
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled."
	}
	if errors.Is(err, ErrTransport) || errors.Is(err, context.DeadlineExceeded) {
		return "Unable to reach the server. Please try again."
	}
	return fallback
}
