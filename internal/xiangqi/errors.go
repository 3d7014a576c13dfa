package xiangqi

import (
	"errors"
	"fmt"
)

// ErrorKind 区分错误类别，HTTP 层据此决定状态码。
type ErrorKind int

const (
	KindMalformedEncoding ErrorKind = iota + 1
	KindCoordinateOutOfRange
	KindIllegalMove
	KindNoSuggestionAvailable
	KindIndexUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedEncoding:
		return "malformed encoding"
	case KindCoordinateOutOfRange:
		return "coordinate out of range"
	case KindIllegalMove:
		return "illegal move"
	case KindNoSuggestionAvailable:
		return "no suggestion available"
	case KindIndexUnavailable:
		return "index unavailable"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error 带类别和原因的结构化错误。
type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Reason
}

// Is 只比较类别，所以 errors.Is(err, ErrIllegalMove) 对任意原因都成立。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMalformedEncoding     = &Error{Kind: KindMalformedEncoding}
	ErrCoordinateOutOfRange  = &Error{Kind: KindCoordinateOutOfRange}
	ErrIllegalMove           = &Error{Kind: KindIllegalMove}
	ErrNoSuggestionAvailable = &Error{Kind: KindNoSuggestionAvailable}
	ErrIndexUnavailable      = &Error{Kind: KindIndexUnavailable}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf 返回 err 链上 *Error 的类别；不是结构化错误时返回 0。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
