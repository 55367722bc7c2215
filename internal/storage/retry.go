package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnavailable is returned after a transient storage failure persisted
// through every retry attempt.
var ErrUnavailable = errors.New("storage temporarily unavailable")

const (
	retryAttempts = 3
	retryBackoff  = 50 * time.Millisecond
)

// withRetry runs fn up to retryAttempts times, retrying only transient
// postgres failures. Business-rule failures (not-found, duplicate key) are
// returned immediately; they would fail identically on every attempt.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// isTransient reports whether the error is worth retrying: connection
// failures (class 08), serialization/deadlock rollbacks (40), resource
// exhaustion (53) and operator-initiated shutdowns (57).
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if len(pgErr.Code) < 2 {
		return false
	}
	switch pgErr.Code[:2] {
	case "08", "40", "53", "57":
		return true
	}
	return false
}
