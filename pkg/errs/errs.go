package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindPermission    Kind = "permission"
	KindNotFound      Kind = "not_found"
	KindLimitExceeded Kind = "limit_exceeded"
	KindState         Kind = "state"
	KindExpired       Kind = "expired"
)

// Sentinels for errors.Is comparisons. Only the Kind is compared.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrPermission    = &Error{Kind: KindPermission}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrLimitExceeded = &Error{Kind: KindLimitExceeded}
	ErrState         = &Error{Kind: KindState}
	ErrExpired       = &Error{Kind: KindExpired}
)

// Violation names a single field that failed validation and the rule that rejected it.
type Violation struct {
	FieldCode string `json:"field_code"`
	Rule      string `json:"rule"`
	Message   string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.FieldCode, v.Message, v.Rule)
}

type Error struct {
	Kind       Kind        `json:"kind"`
	Message    string      `json:"message"`
	Violations []Violation `json:"violations,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		if e.Message == "" {
			return string(e.Kind)
		}
		return e.Message
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	return msg + ": " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Permission(format string, args ...any) *Error { return newf(KindPermission, format, args...) }
func NotFound(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }
func Limit(format string, args ...any) *Error      { return newf(KindLimitExceeded, format, args...) }
func State(format string, args ...any) *Error      { return newf(KindState, format, args...) }
func Expired(format string, args ...any) *Error    { return newf(KindExpired, format, args...) }

// FieldInvalid builds a validation error for a single field and rule.
func FieldInvalid(fieldCode, rule, message string) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    "invalid field " + fieldCode,
		Violations: []Violation{{FieldCode: fieldCode, Rule: rule, Message: message}},
	}
}

// Violations wraps a list of violations into a validation error, or returns nil when empty.
func Violations(vs []Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: "validation failed", Violations: vs}
}

// KindOf returns the taxonomy kind of err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
