package orders

import "errors"

var (
	ErrNotFound     = errors.New("order not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("order state does not permit this transition")
)
