package apperror

import "errors"

// Sentinel kinds checked with errors.Is. The HTTP layer maps these to status
// codes; services only ever return kinds, never status codes.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// AppError pairs an error kind with the human-readable detail message that
// ends up verbatim in the response body.
type AppError struct {
	Err    error
	Detail string
}

func (e *AppError) Error() string {
	return e.Detail
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(detail string) *AppError {
	return &AppError{Err: ErrNotFound, Detail: detail}
}

func Conflict(detail string) *AppError {
	return &AppError{Err: ErrConflict, Detail: detail}
}

func Validation(detail string) *AppError {
	return &AppError{Err: ErrValidation, Detail: detail}
}
