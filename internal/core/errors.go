package core

import "fmt"

// Kind classifies a CoreError for propagation: HTTP status mapping on the
// REST path, toast-vs-terminate on the socket path. Grounded on the
// AppError enum of the distilled system and spec.md §7.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindUnauthorized
	KindTokenExpired
	KindForbidden
	KindUniqueConstraint
	KindFriendStatus
	KindBadRequest
	KindStoreFailure
	KindCacheFailure
	KindIOFailure
	KindSerializeFailure
	KindSendFailure
)

// CoreError is the error type threaded through Store, Hub, and the event
// dispatcher. Only KindSendFailure and KindSerializeFailure are fatal to a
// session; every other kind is recoverable and becomes a toast.
type CoreError struct {
	Kind    Kind
	Message string
	Detail  string // e.g. the rejected value for KindUniqueConstraint
}

func (e *CoreError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Fatal reports whether this error kind must terminate the owning session
// rather than being converted into a toast event.
func (e *CoreError) Fatal() bool {
	return e.Kind == KindSendFailure || e.Kind == KindSerializeFailure
}

func NewError(kind Kind, message string) *CoreError {
	return &CoreError{Kind: kind, Message: message}
}

func Validationf(format string, args ...any) *CoreError {
	return &CoreError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(message string) *CoreError {
	return &CoreError{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *CoreError {
	return &CoreError{Kind: KindForbidden, Message: message}
}

func FriendStatus(message string) *CoreError {
	return &CoreError{Kind: KindFriendStatus, Message: message}
}

func UniqueConstraint(name, value string) *CoreError {
	return &CoreError{
		Kind:    KindUniqueConstraint,
		Message: fmt.Sprintf("%s already in use", name),
		Detail:  value,
	}
}

func StoreFailure(err error) *CoreError {
	return &CoreError{Kind: KindStoreFailure, Message: "store operation failed", Detail: err.Error()}
}

func CacheFailure(err error) *CoreError {
	return &CoreError{Kind: KindCacheFailure, Message: "cache operation failed", Detail: err.Error()}
}

func SendFailure() *CoreError {
	return &CoreError{Kind: KindSendFailure, Message: "failed to send message"}
}

func SerializeFailure() *CoreError {
	return &CoreError{Kind: KindSerializeFailure, Message: "failed to serialize message"}
}

// StatusGroup captures the HTTP-path classification of an error kind,
// independent of any particular web framework's status constants.
func (k Kind) StatusGroup() string {
	switch k {
	case KindTokenExpired:
		return "refresh"
	case KindValidation, KindBadRequest, KindUniqueConstraint, KindFriendStatus:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}
