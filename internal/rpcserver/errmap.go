package rpcserver

import (
	"context"
	"errors"

	kotobav1 "github.com/kotobatl/kotoba/api/kotoba/v1"
	"github.com/kotobatl/kotoba/internal/engine"
)

// wireError maps an engine failure to the structured wire error. Every error
// that crosses the wire carries a kind and a retryable flag; string-only
// errors never leave the server.
func wireError(err error) *kotobav1.Error {
	kind, retryable := classify(err)
	msg := err.Error()
	var ee *engine.Error
	if errors.As(err, &ee) {
		// Drop the kind prefix; the host surfaces this text directly.
		msg = ee.Message()
	}
	return &kotobav1.Error{
		Kind:      kind,
		Message:   msg,
		Retryable: retryable,
	}
}

// classify resolves the wire kind and retryable flag for err.
//
// Retryable semantics: BatchSizeExceeded retries with a smaller batch,
// ModelNotLoaded after polling readiness, InferenceFailed once,
// ResourceExhausted after reclamation has run.
func classify(err error) (kotobav1.ErrorKind, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return kotobav1.ErrorKind_ERROR_KIND_CANCELLED, false
	}
	switch engine.KindOf(err) {
	case engine.KindInvalidInput, engine.KindUnsupportedLanguage:
		return kotobav1.ErrorKind_ERROR_KIND_INVALID_ARGUMENT, false
	case engine.KindTextTooLong:
		return kotobav1.ErrorKind_ERROR_KIND_TEXT_TOO_LONG, false
	case engine.KindBatchSizeExceeded:
		return kotobav1.ErrorKind_ERROR_KIND_BATCH_SIZE_EXCEEDED, true
	case engine.KindModelNotLoaded:
		return kotobav1.ErrorKind_ERROR_KIND_MODEL_NOT_LOADED, true
	case engine.KindInferenceFailed:
		return kotobav1.ErrorKind_ERROR_KIND_INFERENCE_FAILED, true
	case engine.KindResourceExhausted:
		return kotobav1.ErrorKind_ERROR_KIND_RESOURCE_EXHAUSTED, true
	default:
		return kotobav1.ErrorKind_ERROR_KIND_UNKNOWN, false
	}
}

// isCancellation reports whether err stems from caller cancellation, which is
// surfaced as a transport status rather than an in-band response.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
