package errs

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
	ErrBadRequest = errors.New("bad request")
)

type ErrorResponse struct {
	Error string `json:"error"`
}
