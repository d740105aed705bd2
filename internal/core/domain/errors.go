package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")

	ErrRetrieval     = errors.New("retrieval failure")
	ErrEncoding      = errors.New("encoding failure")
	ErrGeneration    = errors.New("generation failure")
	ErrTimeout       = errors.New("query deadline exceeded")
	ErrConfiguration = errors.New("configuration error")
	ErrIndexing      = errors.New("indexing failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
