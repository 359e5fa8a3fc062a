package booksvc

import "errors"

// errors used by controllers

type ErrCode string

const (
	ErrInvalidArgument  ErrCode = "INVALID_ARGUMENT"
	ErrUserNotFound     ErrCode = "USER_NOT_FOUND"
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrOutOfStock       ErrCode = "OUT_OF_STOCK"
	ErrNotAllowed       ErrCode = "OPERATION_NOT_ALLOWED"
	ErrDuplicateBook    ErrCode = "DUPLICATE_BOOK"
	ErrDuplicateRequest ErrCode = "DUPLICATE_REQUEST"
	ErrOperationFailed  ErrCode = "OPERATION_FAILED"
)

type codedError struct {
	code  ErrCode
	msg   string
	cause error
}

func (e codedError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// wrapErr keeps the original cause for diagnostics. Used only for failures
// that are not one of the named kinds.
func wrapErr(c ErrCode, msg string, cause error) error {
	return codedError{code: c, msg: msg, cause: cause}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
