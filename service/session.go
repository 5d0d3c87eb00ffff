package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultRemoteTimeout = 30 * time.Second

// Session holds the authenticated Google clients for the lifetime of the process.
// It is acquired once at startup and injected into every store client. A 401 from
// either API invalidates it; there is no implicit re-authentication.
type Session struct {
	drive   *drive.Service
	sheets  *sheets.Service
	timeout time.Duration
	valid   atomic.Bool
}

// CredentialOptions builds client options from a Service Account JSON file path
// or from the raw JSON (takes precedence when both are set)
func CredentialOptions(credentialsPath, credentialsJSON string) ([]option.ClientOption, error) {
	switch {
	case credentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credentialsJSON))}, nil
	case credentialsPath != "":
		return []option.ClientOption{option.WithCredentialsFile(credentialsPath)}, nil
	default:
		return nil, fmt.Errorf("%w: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS_JSON must be set", ErrAuth)
	}
}

// NewSession creates the Drive and Sheets clients sharing the given options.
// timeout bounds every remote call made through the session.
func NewSession(ctx context.Context, timeout time.Duration, opts ...option.ClientOption) (*Session, error) {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}

	opts = append([]option.ClientOption{option.WithScopes(drive.DriveScope, sheets.SpreadsheetsScope)}, opts...)

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create drive service: %v", ErrAuth, err)
	}

	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create sheets service: %v", ErrAuth, err)
	}

	s := &Session{
		drive:   driveService,
		sheets:  sheetsService,
		timeout: timeout,
	}
	s.valid.Store(true)

	log.Printf("✓ Google session established (remote timeout %s)", timeout)
	return s, nil
}

// Valid reports whether the session can still be used
func (s *Session) Valid() bool {
	return s != nil && s.valid.Load()
}

// Invalidate marks the session unusable. Subsequent calls fail with ErrAuth.
func (s *Session) Invalidate(reason error) {
	if s == nil {
		return
	}
	if s.valid.CompareAndSwap(true, false) {
		log.Printf("❌ Google session invalidated: %v", reason)
	}
}

// Drive returns the Drive client or ErrAuth
func (s *Session) Drive() (*drive.Service, error) {
	if !s.Valid() {
		return nil, ErrAuth
	}
	return s.drive, nil
}

// Sheets returns the Sheets client or ErrAuth
func (s *Session) Sheets() (*sheets.Service, error) {
	if !s.Valid() {
		return nil, ErrAuth
	}
	return s.sheets, nil
}

// Timeout returns the per-call deadline
func (s *Session) Timeout() time.Duration {
	if s == nil || s.timeout <= 0 {
		return defaultRemoteTimeout
	}
	return s.timeout
}

// call runs one remote operation under the session timeout, classifies its error
// and invalidates the session on authentication failures
func (s *Session) call(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout())
	defer cancel()

	err := classifyError(fn(callCtx))
	if errors.Is(err, ErrAuth) {
		s.Invalidate(err)
	}
	return err
}
