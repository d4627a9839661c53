// Package apperr holds the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"

	"backend-travelapp/internal/shared/logging"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

// Error is a typed failure. Two errors are considered equal by errors.Is when
// their codes match, so sentinels below can be compared against wrapped values.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidPayload       = Validation("INVALID_PAYLOAD", "invalid payload")
	ErrInvalidComponentType = Validation("INVALID_COMPONENT_TYPE", "invalid component type")
	ErrUnauthenticated      = &Error{Kind: KindUnauthenticated, Code: "UNAUTHENTICATED", Message: "unauthenticated"}
	ErrNotAuthorized        = &Error{Kind: KindForbidden, Code: "NOT_AUTHORIZED", Message: "not authorized"}
	ErrNotFound             = NotFound("NOT_FOUND", "not found")
	ErrDuplicateTag         = Conflict("DUPLICATE_TAG", "tag already exists")
	ErrDuplicateTagLink     = Conflict("DUPLICATE_TAG_LINK", "tag already linked to post")
	ErrDuplicateRequest     = Conflict("DUPLICATE_REQUEST", "follow request already exists")
	ErrRateLimited          = &Error{Kind: KindRateLimited, Code: "RATE_LIMITED", Message: "too many attempts, try again later"}
	ErrTransaction          = &Error{Kind: KindInternal, Code: "TRANSACTION_FAILED", Message: "transaction failed"}
)

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func Forbidden(code, msg string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: msg}
}

// Wrap attaches a cause to a copy of e.
func Wrap(e *Error, err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage returns a copy of e carrying msg.
func WithMessage(e *Error, msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func Status(kind Kind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// ToFiber maps err to a *fiber.Error. Internal failures are logged and their
// details are not exposed to the caller; neither are auth failure reasons.
func ToFiber(err error) *fiber.Error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind == KindInternal {
		logging.Error.Printf("internal error: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
	if ae.Kind == KindUnauthenticated {
		return fiber.NewError(fiber.StatusUnauthorized, ErrUnauthenticated.Message)
	}
	return fiber.NewError(Status(ae.Kind), ae.Message)
}

// Handler renders errors as JSON. It is installed as the fiber ErrorHandler.
func Handler(c *fiber.Ctx, err error) error {
	code := "INTERNAL_ERROR"
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		code = ae.Code
	}
	fe := ToFiber(err)
	if code == "INTERNAL_ERROR" && fe.Code != fiber.StatusInternalServerError {
		code = codeForStatus(fe.Code)
	}
	return c.Status(fe.Code).JSON(fiber.Map{
		"error": fe.Message,
		"code":  code,
	})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return ErrInvalidPayload.Code
	case fiber.StatusUnauthorized:
		return ErrUnauthenticated.Code
	case fiber.StatusForbidden:
		return ErrNotAuthorized.Code
	case fiber.StatusNotFound:
		return ErrNotFound.Code
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusTooManyRequests:
		return ErrRateLimited.Code
	default:
		return "HTTP_ERROR"
	}
}
