package rpcserver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	kotobav1 "github.com/kotobatl/kotoba/api/kotoba/v1"
	"github.com/kotobatl/kotoba/internal/engine"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      kotobav1.ErrorKind
		retryable bool
	}{
		{
			name: "invalid input",
			err:  engine.Errorf(engine.KindInvalidInput, "empty"),
			kind: kotobav1.ErrorKind_ERROR_KIND_INVALID_ARGUMENT,
		},
		{
			name: "unsupported language",
			err:  engine.Errorf(engine.KindUnsupportedLanguage, "xx"),
			kind: kotobav1.ErrorKind_ERROR_KIND_INVALID_ARGUMENT,
		},
		{
			name: "text too long",
			err:  engine.Errorf(engine.KindTextTooLong, "300 tokens"),
			kind: kotobav1.ErrorKind_ERROR_KIND_TEXT_TOO_LONG,
		},
		{
			name:      "batch size exceeded",
			err:       engine.Errorf(engine.KindBatchSizeExceeded, "33 > 32"),
			kind:      kotobav1.ErrorKind_ERROR_KIND_BATCH_SIZE_EXCEEDED,
			retryable: true,
		},
		{
			name:      "model not loaded",
			err:       engine.Errorf(engine.KindModelNotLoaded, "loading"),
			kind:      kotobav1.ErrorKind_ERROR_KIND_MODEL_NOT_LOADED,
			retryable: true,
		},
		{
			name:      "inference failed",
			err:       engine.Errorf(engine.KindInferenceFailed, "session"),
			kind:      kotobav1.ErrorKind_ERROR_KIND_INFERENCE_FAILED,
			retryable: true,
		},
		{
			name:      "resource exhausted",
			err:       engine.Errorf(engine.KindResourceExhausted, "oom"),
			kind:      kotobav1.ErrorKind_ERROR_KIND_RESOURCE_EXHAUSTED,
			retryable: true,
		},
		{
			name: "cancellation",
			err:  context.Canceled,
			kind: kotobav1.ErrorKind_ERROR_KIND_CANCELLED,
		},
		{
			name: "deadline",
			err:  fmt.Errorf("rpc: %w", context.DeadlineExceeded),
			kind: kotobav1.ErrorKind_ERROR_KIND_CANCELLED,
		},
		{
			name: "unclassified",
			err:  errors.New("mystery"),
			kind: kotobav1.ErrorKind_ERROR_KIND_UNKNOWN,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, retryable := classify(tc.err)
			if kind != tc.kind {
				t.Errorf("kind = %v, want %v", kind, tc.kind)
			}
			if retryable != tc.retryable {
				t.Errorf("retryable = %v, want %v", retryable, tc.retryable)
			}
		})
	}
}

func TestWireError_StripsKindPrefix(t *testing.T) {
	we := wireError(engine.Errorf(engine.KindTextTooLong, "source tokenizes to 300 tokens, limit 256"))
	if we.GetMessage() != "source tokenizes to 300 tokens, limit 256" {
		t.Errorf("Message = %q, want no kind prefix", we.GetMessage())
	}
	if we.GetKind() != kotobav1.ErrorKind_ERROR_KIND_TEXT_TOO_LONG {
		t.Errorf("Kind = %v", we.GetKind())
	}
}

func TestWireError_PlainError(t *testing.T) {
	we := wireError(errors.New("plain failure"))
	if we.GetMessage() != "plain failure" {
		t.Errorf("Message = %q", we.GetMessage())
	}
	if we.GetKind() != kotobav1.ErrorKind_ERROR_KIND_UNKNOWN {
		t.Errorf("Kind = %v", we.GetKind())
	}
}
