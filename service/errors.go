package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrAuth means there is no valid credential session. Not retried.
	ErrAuth = errors.New("no valid credential session")
	// ErrNotFound means a named table or folder does not exist
	ErrNotFound = errors.New("not found")
	// ErrUpload means an image could not be stored; the submission is aborted
	ErrUpload = errors.New("image upload failed")
	// ErrTimeout means a remote call exceeded its deadline
	ErrTimeout = errors.New("remote call timed out")
	// ErrSchemaMismatch means an existing header row differs from models.ColumnSchema
	ErrSchemaMismatch = errors.New("header row does not match column schema")
	// ErrInvalidRecord means the record failed validation before any remote call
	ErrInvalidRecord = errors.New("invalid fabric record")
)

// classifyError maps transport and Google API errors onto the error taxonomy.
// The original error stays in the chain.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuth) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrAuth, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return err
}

// isFatal reports errors that must never be degraded into a fallback
func isFatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrTimeout)
}
