package service

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")                 // 401
	ErrValidation      = errors.New("validation")                      // 400
	ErrNotFound        = errors.New("not found")                       // 404
	ErrInvalidDiscount = errors.New("invalid or expired discount code") // 400
	ErrConflict        = errors.New("conflict")                        // 409
	ErrForbidden       = errors.New("forbidden")                       // 403
)
