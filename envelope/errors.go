package envelope

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// The recipient-mismatch and decryption-failure cases are deliberately kept
// distinguishable: the first can be retried via OpenAny, the second cannot
// succeed with the same key material.
type Kind string

const (
	// KindSeal covers failures while constructing an envelope
	// (malformed recipient public keys, entropy failures).
	KindSeal Kind = "Seal"

	// KindRecipient means no recipient entry matched the caller's identity.
	KindRecipient Kind = "Recipient"

	// KindDecrypt means unwrapping or authenticated decryption failed:
	// wrong key, corrupted envelope, or tampering.
	KindDecrypt Kind = "Decrypt"

	// KindMalformed means the envelope bytes or structure are invalid.
	KindMalformed Kind = "Malformed"
)

// Error is the envelope layer's structured error type.
//
// RuleID is a stable identifier (e.g., GV-ENV-201) naming the violated
// invariant. Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
