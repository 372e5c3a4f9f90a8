package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmbedding    = errors.New("embedding failure")
	ErrSearch       = errors.New("search failure")
	ErrGeneration   = errors.New("generation failure")
	ErrSessionStore = errors.New("session store failure")
	ErrStatistics   = errors.New("statistics unavailable")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
