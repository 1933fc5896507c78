package errors

import "errors"

var (
	ErrGameAlreadyOver = errors.New("game is already over")
	ErrInvalidPosition = errors.New("invalid position")
	ErrGameNotFound    = errors.New("game not found")
	ErrInvalidSnapshot = errors.New("invalid game snapshot")
	ErrInternal        = errors.New("internal error")
)
