// Package apperror defines the closed set of failures the order service reports.
// Every error carries a stable numeric code that clients can depend on.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	KindAccessDenied  Kind = "access_denied"
	KindConflict      Kind = "conflict"
	KindInvalid       Kind = "invalid"
	KindValidation    Kind = "validation"
)

type Code int

const (
	CodeUserNotFound      Code = 100
	CodeProductNotFound   Code = 101
	CodeOrderNotFound     Code = 102
	CodeOrderItemNotFound Code = 103
	CodeCategoryNotFound  Code = 104

	CodeUserAlreadyExists      Code = 200
	CodeCategoryAlreadyExists  Code = 201
	CodeProductAlreadyExists   Code = 202
	CodeOrderAlreadyExists     Code = 203
	CodeOrderItemAlreadyExists Code = 204

	CodeAccessDenied Code = 300

	CodeCannotCancelOrder    Code = 400
	CodeInvalidOrderStatus   Code = 401
	CodeInvalidPaymentMethod Code = 402
	CodeInsufficientBalance  Code = 403

	CodeValidationFailed Code = 500
)

var codeNames = map[Code]string{
	CodeUserNotFound:           "USER_NOT_FOUND",
	CodeProductNotFound:        "PRODUCT_NOT_FOUND",
	CodeOrderNotFound:          "ORDER_NOT_FOUND",
	CodeOrderItemNotFound:      "ORDER_ITEM_NOT_FOUND",
	CodeCategoryNotFound:       "CATEGORY_NOT_FOUND",
	CodeUserAlreadyExists:      "USER_ALREADY_EXISTS",
	CodeCategoryAlreadyExists:  "CATEGORY_ALREADY_EXISTS",
	CodeProductAlreadyExists:   "PRODUCT_ALREADY_EXISTS",
	CodeOrderAlreadyExists:     "ORDER_ALREADY_EXISTS",
	CodeOrderItemAlreadyExists: "ORDER_ITEM_ALREADY_EXISTS",
	CodeAccessDenied:           "ACCESS_DENIED",
	CodeCannotCancelOrder:      "CANNOT_CANCEL_ORDER",
	CodeInvalidOrderStatus:     "INVALID_ORDER_STATUS",
	CodeInvalidPaymentMethod:   "INVALID_PAYMENT_METHOD",
	CodeInsufficientBalance:    "INSUFFICIENT_BALANCE",
	CodeValidationFailed:       "VALIDATION_FAILED",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", int(c))
}

// Kind derives the failure family from the code range.
func (c Code) Kind() Kind {
	switch {
	case c >= 100 && c < 200:
		return KindNotFound
	case c >= 200 && c < 300:
		return KindAlreadyExists
	case c == CodeAccessDenied:
		return KindAccessDenied
	case c == CodeCannotCancelOrder, c == CodeInvalidOrderStatus:
		return KindConflict
	case c == CodeInvalidPaymentMethod, c == CodeInsufficientBalance:
		return KindInvalid
	default:
		return KindValidation
	}
}

type Error struct {
	Code    Code
	Message string
	Args    []any
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return e.Message
	}
	return fmt.Sprintf(e.Message, e.Args...)
}

func (e *Error) Kind() Kind { return e.Code.Kind() }

// Is matches on the code so a sentinel compares equal to any copy carrying args.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of e whose message is interpolated with args.
func (e *Error) With(args ...any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Args: args}
}

func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

var ErrValidation = New(CodeValidationFailed, "validation failed: %s")

func Validation(format string, args ...any) *Error {
	return ErrValidation.With(fmt.Sprintf(format, args...))
}
