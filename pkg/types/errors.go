package types

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthentication
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidState
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error is a client-facing failure. Message is safe to return in an API response.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound         = NewError(KindNotFound, "User not found")
	ErrDonationNotFound     = NewError(KindNotFound, "Donation not found")
	ErrContributionNotFound = NewError(KindNotFound, "Contribution not found")
	ErrNotificationNotFound = NewError(KindNotFound, "Notification not found")

	ErrInvalidCredentials = NewError(KindAuthentication, "Invalid credentials")
	ErrEmailTaken         = NewError(KindValidation, "An account with this email already exists")
	ErrDonorNotFound      = NewError(KindValidation, "Donor not found")

	ErrDonationCancelled = NewError(KindInvalidState, "Cannot contribute to cancelled donation")
	ErrNoUpdateFields    = NewError(KindValidation, "No valid fields to update")
	ErrValueOutOfRange   = NewError(KindValidation, "A value is out of the allowed range")
)
