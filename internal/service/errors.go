package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStorage           = errors.New("storage error")
	ErrExternalService   = errors.New("external service error")
)

// ExternalServiceError reports a failed call to a detector or generator.
// Detail and RawText are surfaced to the client as-is.
type ExternalServiceError struct {
	Op      string
	Detail  string
	RawText string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrExternalService) match any ExternalServiceError.
func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}
