package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
)

var ErrRepository = errors.New("application: repository failure")

// WrapRepositoryError keeps domain failures and cancellations as they are and
// hides every other storage error behind ErrRepository.
func WrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrRepository) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}

// StatusText is the short status recorded on spans and use case logs.
func StatusText(err error) string {
	if err == nil {
		return "OK"
	}
	if appErr, ok := apperror.As(err); ok {
		return appErr.Code.String()
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "CONTEXT_CANCELED"
	case errors.Is(err, context.DeadlineExceeded):
		return "CONTEXT_DEADLINE_EXCEEDED"
	case errors.Is(err, ErrRepository):
		return "REPOSITORY_FAILURE"
	default:
		return "INTERNAL"
	}
}
