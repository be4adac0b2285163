package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine-side failure before wire mapping. The set is
// closed; anything an implementation cannot classify must be coerced to
// [KindInferenceFailed] with the original message preserved (see [Coerce]).
type Kind int

const (
	// KindUnknown is the zero value and never set deliberately.
	KindUnknown Kind = iota

	// KindModelNotLoaded: the engine is not warm, an asset is missing, a
	// dependency library is absent, or accelerator init failed.
	KindModelNotLoaded

	// KindUnsupportedLanguage: a language code outside the declared
	// enumeration.
	KindUnsupportedLanguage

	// KindTextTooLong: the tokenized source exceeds the decoding limit.
	KindTextTooLong

	// KindBatchSizeExceeded: more inputs than the engine's max batch.
	KindBatchSizeExceeded

	// KindInferenceFailed: any failure inside the model call.
	KindInferenceFailed

	// KindInvalidInput: malformed request data, e.g. an undecodable image.
	KindInvalidInput

	// KindResourceExhausted: out-of-memory on the accelerator. Raised after
	// reclamation has been triggered.
	KindResourceExhausted
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindModelNotLoaded:
		return "model_not_loaded"
	case KindUnsupportedLanguage:
		return "unsupported_language"
	case KindTextTooLong:
		return "text_too_long"
	case KindBatchSizeExceeded:
		return "batch_size_exceeded"
	case KindInferenceFailed:
		return "inference_failed"
	case KindInvalidInput:
		return "invalid_input"
	case KindResourceExhausted:
		return "resource_exhausted"
	default:
		return "unknown"
	}
}

// Error is a classified engine failure. It wraps the underlying cause, so
// errors.Is/As still see it.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// Errorf builds an [Error] of the given kind. Format verbs behave like
// [fmt.Errorf], including %w wrapping.
func Errorf(kind Kind, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Kind: kind, msg: wrapped.Error(), err: errors.Unwrap(wrapped)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.msg
}

// Message returns the human-readable text without the kind prefix, suitable
// for surfacing to the host directly.
func (e *Error) Message() string { return e.msg }

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the [Kind] from err, or [KindUnknown] when err carries no
// classification.
func KindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindUnknown
}

// Coerce ensures err carries a [Kind]. Already-classified errors pass through
// unchanged; anything else becomes [KindInferenceFailed] with the original
// message preserved. A nil err stays nil.
func Coerce(err error) error {
	if err == nil {
		return nil
	}
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	return &Error{Kind: KindInferenceFailed, msg: err.Error(), err: err}
}
