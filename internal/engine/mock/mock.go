// Package mock provides in-memory mock implementations of [engine.Translator]
// and [engine.Recognizer] for use in unit tests.
//
// The mocks record every method call and allow the test to configure return
// values via exported fields. They are safe for concurrent use.
//
// Example:
//
//	e := &mock.Translator{
//	    EngineInfo: engine.Info{Name: "mock-nmt", Version: "test", Languages: []string{"en", "ja"}},
//	    TranslateFunc: func(text, src, tgt string) (engine.Translation, error) {
//	        return engine.Translation{Text: "«" + text + "»", Score: 0.9}, nil
//	    },
//	}
//	_ = e.Load(ctx)
//	out, err := e.Translate(ctx, "Hello", "en", "ja")
package mock

import (
	"context"
	"sync"

	"github.com/kotobatl/kotoba/internal/engine"
)

// Compile-time interface assertions.
var (
	_ engine.Translator = (*Translator)(nil)
	_ engine.Recognizer = (*Recognizer)(nil)
)

// TranslateCall records the arguments of a single Translate call.
type TranslateCall struct {
	Text     string
	Src, Tgt string
}

// BatchCall records the arguments of a single TranslateBatch call.
type BatchCall struct {
	Texts    []string
	Src, Tgt string
}

// Translator is a mock implementation of [engine.Translator].
type Translator struct {
	mu sync.Mutex

	// EngineInfo is returned by Info and feeds SupportedLanguages.
	EngineInfo engine.Info

	// Max is returned by MaxBatchSize. Defaults to 32 when zero.
	Max int

	// LoadErr, if non-nil, is returned by Load.
	LoadErr error

	// WarmupErr, if non-nil, is returned by Warmup.
	WarmupErr error

	// TranslateFunc computes the result of Translate and of each
	// TranslateBatch element. When nil, the input text is echoed with
	// [engine.ScoreUnsupported].
	TranslateFunc func(text, src, tgt string) (engine.Translation, error)

	// TranslateCalls accumulates Translate invocations.
	TranslateCalls []TranslateCall

	// BatchCalls accumulates TranslateBatch invocations.
	BatchCalls []BatchCall

	loaded bool
	closed bool
}

// Load marks the mock ready unless LoadErr is set.
func (t *Translator) Load(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.LoadErr != nil {
		return t.LoadErr
	}
	t.loaded = true
	return nil
}

// Warmup returns WarmupErr.
func (t *Translator) Warmup(context.Context) error { return t.WarmupErr }

// Ready reports whether Load succeeded.
func (t *Translator) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded && !t.closed
}

// HealthCheck mirrors Ready.
func (t *Translator) HealthCheck(context.Context) error {
	if !t.Ready() {
		return engine.Errorf(engine.KindModelNotLoaded, "mock translator not loaded")
	}
	return nil
}

// Info returns EngineInfo.
func (t *Translator) Info() engine.Info { return t.EngineInfo }

// SupportedLanguages returns EngineInfo.Languages.
func (t *Translator) SupportedLanguages() []string { return t.EngineInfo.Languages }

// MaxBatchSize returns Max or 32.
func (t *Translator) MaxBatchSize() int {
	if t.Max > 0 {
		return t.Max
	}
	return 32
}

// Close marks the mock closed.
func (t *Translator) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Translations returns a snapshot of TranslateCalls, safe to read while
// other goroutines still translate.
func (t *Translator) Translations() []TranslateCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TranslateCall(nil), t.TranslateCalls...)
}

// Batches returns a snapshot of BatchCalls.
func (t *Translator) Batches() []BatchCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]BatchCall(nil), t.BatchCalls...)
}

// Translate records the call and applies TranslateFunc.
func (t *Translator) Translate(_ context.Context, text, src, tgt string) (engine.Translation, error) {
	t.mu.Lock()
	t.TranslateCalls = append(t.TranslateCalls, TranslateCall{Text: text, Src: src, Tgt: tgt})
	fn := t.TranslateFunc
	t.mu.Unlock()
	if fn == nil {
		return engine.Translation{Text: text, Score: engine.ScoreUnsupported}, nil
	}
	return fn(text, src, tgt)
}

// TranslateBatch records the call and applies TranslateFunc element-wise,
// passing empty inputs through untranslated like a real engine.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string, src, tgt string) ([]engine.Translation, error) {
	t.mu.Lock()
	t.BatchCalls = append(t.BatchCalls, BatchCall{Texts: append([]string(nil), texts...), Src: src, Tgt: tgt})
	t.mu.Unlock()

	out := make([]engine.Translation, len(texts))
	for i, text := range texts {
		if text == "" {
			out[i] = engine.Translation{Score: engine.ScoreUnsupported}
			continue
		}
		tr, err := t.Translate(ctx, text, src, tgt)
		if err != nil {
			return nil, err
		}
		out[i] = tr
	}
	return out, nil
}

// RecognizeCall records the arguments of a single Recognize call.
type RecognizeCall struct {
	ImageData []byte
	Languages []string
}

// Recognizer is a mock implementation of [engine.Recognizer].
type Recognizer struct {
	mu sync.Mutex

	// EngineInfo is returned by Info.
	EngineInfo engine.Info

	// LoadErr, if non-nil, is returned by Load.
	LoadErr error

	// RecognizeResult is returned by Recognize (an empty recognition when
	// nil).
	RecognizeResult *engine.Recognition

	// RecognizeErr, if non-nil, is returned by Recognize.
	RecognizeErr error

	// RecognizeCalls accumulates Recognize invocations.
	RecognizeCalls []RecognizeCall

	loaded bool
}

// Load marks the mock ready unless LoadErr is set.
func (r *Recognizer) Load(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LoadErr != nil {
		return r.LoadErr
	}
	r.loaded = true
	return nil
}

// Warmup is a no-op.
func (r *Recognizer) Warmup(context.Context) error { return nil }

// Ready reports whether Load succeeded.
func (r *Recognizer) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// HealthCheck mirrors Ready.
func (r *Recognizer) HealthCheck(context.Context) error {
	if !r.Ready() {
		return engine.Errorf(engine.KindModelNotLoaded, "mock recognizer not loaded")
	}
	return nil
}

// Info returns EngineInfo.
func (r *Recognizer) Info() engine.Info { return r.EngineInfo }

// SupportedLanguages returns EngineInfo.Languages.
func (r *Recognizer) SupportedLanguages() []string { return r.EngineInfo.Languages }

// Close is a no-op.
func (r *Recognizer) Close() error { return nil }

// Recognize records the call and returns the configured result.
func (r *Recognizer) Recognize(_ context.Context, imageData []byte, languages []string) (*engine.Recognition, error) {
	r.mu.Lock()
	r.RecognizeCalls = append(r.RecognizeCalls, RecognizeCall{
		ImageData: imageData,
		Languages: append([]string(nil), languages...),
	})
	res, err := r.RecognizeResult, r.RecognizeErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &engine.Recognition{Regions: []engine.Region{}}, nil
	}
	return res, nil
}
