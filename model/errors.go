package model

import "fmt"

type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrInvalidCID        ErrorCode = "INVALID_CID"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrCIDMismatch       ErrorCode = "CID_MISMATCH"
	ErrUnknownSeries     ErrorCode = "UNKNOWN_SERIES"
	ErrUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrSeriesExists      ErrorCode = "SERIES_EXISTS"
	ErrVersionRange      ErrorCode = "VERSION_OUT_OF_RANGE"
	ErrNoRecipient       ErrorCode = "NO_RECIPIENT"
	ErrDecryptionFailed  ErrorCode = "DECRYPTION_FAILED"
	ErrMalformedEnvelope ErrorCode = "MALFORMED_ENVELOPE"
	ErrNoPublicKey       ErrorCode = "NO_PUBLIC_KEY"
	ErrInternal          ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}
