package embedding

import "errors"

var (
	// ErrInvalidInput is returned when Generate is called without texts.
	ErrInvalidInput = errors.New("embedding: no texts provided")
)

// IsInvalidInputError checks if the error is an invalid input error.
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
