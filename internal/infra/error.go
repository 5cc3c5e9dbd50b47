package infra

import (
	"context"
	"errors"

	"openbook/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// Raised by the server when statement_timeout cancels a query.
const pgErrCodeQueryCanceled = "57014"

type RepositoryErrorKind string

// Infrastructure-specific error kinds
const (
	KindNotFound  RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure RepositoryErrorKind = "DB_FAILURE"
	KindConflict  RepositoryErrorKind = "CONFLICT"
	KindTimeout   RepositoryErrorKind = "TIMEOUT"
)

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// Is surfaces timeout-kind failures as the transient sentinel, so the
// usecase and handler layers can branch on errs.ErrTransientStoreFailure
// without importing this package.
func (e RepositoryError) Is(target error) bool {
	return target == errs.ErrTransientStoreFailure && e.Kind == KindTimeout
}

// WrapRepoErr tags a low-level error with a repository kind. The default
// kind is DB_FAILURE; context deadlines and server-side statement
// timeouts become TIMEOUT so callers can treat them as retryable.
func WrapRepoErr(msg string, err error, kinds ...RepositoryErrorKind) error {
	kind := KindDBFailure
	if len(kinds) > 0 {
		kind = kinds[0]
	} else if isTimeout(err) {
		kind = KindTimeout
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeQueryCanceled
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsRetryable reports whether the failure is transient (timeouts and
// similar store hiccups) and safe to retry with backoff.
func IsRetryable(err error) bool {
	return IsKind(err, KindTimeout)
}
