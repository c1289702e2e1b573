package models

import "errors"

// Domain specific errors for authentication, authorization and store data.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrVendorName      = errors.New("vendor business name is required for vendors")
	ErrBusinessName    = errors.New("business name is required for non-vendors")
	ErrInvalidRole     = errors.New("unknown role")
)
