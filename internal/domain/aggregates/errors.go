package aggregates

import (
	"errors"
	"strings"
)

// ErrorCode classifies a failure for callers and the HTTP layer.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeInvalidState       ErrorCode = "invalid_state"
	CodeConflict           ErrorCode = "conflict"
	CodeUpstreamGeneration ErrorCode = "upstream_generation"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Error carries a code, the operation that failed ("Learning.Progress.Start")
// and a message fit for a learner. Cause holds the underlying failure and
// never reaches clients.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

// Error renders "op: message [code]: cause", omitting empty parts.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if op := strings.TrimSpace(e.Op); op != "" {
		b.WriteString(op)
		b.WriteString(": ")
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(msg)
		b.WriteByte(' ')
	}
	b.WriteString("[" + string(e.Code) + "]")
	if e.Cause != nil && e.Cause.Error() != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Public is the message safe to show to a client: the plain message
// without op or code decoration.
func (e *Error) Public() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return string(e.Code)
}

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{Code: code, Op: op, Message: message, Cause: cause}
}

// Wrap annotates err with code, keeping err's text as the message.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Message: err.Error(), Cause: err}
}

func Validation(op, message string) error   { return NewError(CodeValidation, op, message, nil) }
func NotFound(op, message string) error     { return NewError(CodeNotFound, op, message, nil) }
func InvalidState(op, message string) error { return NewError(CodeInvalidState, op, message, nil) }
func Internal(op, message string) error     { return NewError(CodeInternal, op, message, nil) }

// Upstream reports a text generation failure. The cause stays attached for
// logs; clients only see message.
func Upstream(op, message string, cause error) error {
	return NewError(CodeUpstreamGeneration, op, message, cause)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}
