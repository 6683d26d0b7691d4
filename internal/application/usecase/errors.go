package usecase

import "errors"

// ErrInvalidInput wraps every request validation failure so transports can
// map it to a client error.
var ErrInvalidInput = errors.New("invalid input")
