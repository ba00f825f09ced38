package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
)

var (
	ErrValidation = errors.New("aggregate validation")
	// ErrInvalidState marks a transition the record's current state forbids.
	ErrInvalidState = errors.New("aggregate invalid state")
	ErrConflict     = errors.New("aggregate conflict")
	ErrRetryable    = errors.New("aggregate retryable")
)

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func InvalidStateError(msg string) error {
	return errors.Join(ErrInvalidState, errors.New(strings.TrimSpace(msg)))
}

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure and domain failures onto aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}

	var outOfOrder *learning.StepOutOfOrderError
	var unknownDecision *learning.UnknownDecisionError
	switch {
	case errors.As(err, &unknownDecision):
		return domainagg.NewError(domainagg.CodeValidation, op, unknownDecision.Error(), err)
	case errors.As(err, &outOfOrder),
		errors.Is(err, learning.ErrProgressCompleted),
		errors.Is(err, learning.ErrNoRemainingSteps):
		return domainagg.Wrap(domainagg.CodeInvalidState, op, err)
	}

	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.NewError(domainagg.CodeValidation, op, sentinelMessage(err, ErrValidation), err)
	case errors.Is(err, ErrInvalidState):
		return domainagg.NewError(domainagg.CodeInvalidState, op, sentinelMessage(err, ErrInvalidState), err)
	case errors.Is(err, ErrConflict):
		return domainagg.NewError(domainagg.CodeConflict, op, sentinelMessage(err, ErrConflict), err)
	case errors.Is(err, ErrRetryable):
		return domainagg.NewError(domainagg.CodeRetryable, op, sentinelMessage(err, ErrRetryable), err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

// sentinelMessage strips the sentinel line that errors.Join prepends.
func sentinelMessage(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + "\n"
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(msg, prefix))
	}
	return msg
}
