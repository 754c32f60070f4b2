package errs

import (
	"errors"

	cr "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return cr.New(msg)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

// Mark attaches markErr to err so callers can match it with errors.Is
// without losing the original cause chain. The wrapper satisfies stdlib
// Is/Unwrap: cockroachdb's Mark records the mark outside the Unwrap chain,
// where plain errors.Is cannot see it.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return &marked{cause: err, mark: markErr}
}

type marked struct {
	cause error
	mark  error
}

func (e *marked) Error() string { return e.cause.Error() }
func (e *marked) Unwrap() error { return e.cause }

func (e *marked) Is(target error) bool {
	return errors.Is(e.mark, target)
}
