// Package engine defines the uniform contract every inference back-end
// implements, regardless of model family.
//
// An Engine is a loaded model plus its tokenizer (or pre/post-processing
// stages) and glue code. The server runtime owns its engines for the lifetime
// of the process: they are constructed during bootstrap, loaded once, and
// closed at shutdown, never swapped at runtime.
//
// Two refinements exist: [Translator] for sequence-to-sequence machine
// translation and [Recognizer] for optical character recognition. The RPC
// layer only ever talks to these interfaces, so back-end shapes (quantized
// encoder-decoder, hybrid detector+recognizer) can change without touching
// the wire protocol.
//
// This package lives under internal/ because it encapsulates
// application-private processing logic and is not intended to be imported by
// external code.
package engine

import (
	"context"
)

// Info describes a loaded engine to callers and status RPCs.
type Info struct {
	// Name is a stable display name, e.g. "nmt-quantized" or "ocr-hybrid".
	Name string

	// Version is the engine version string reported on every response.
	Version string

	// Languages is the closed enumeration of client-facing language codes
	// the engine accepts.
	Languages []string
}

// Translation is the outcome of translating one piece of text.
type Translation struct {
	// Text is the translated string with all special and language-tag tokens
	// removed.
	Text string

	// Score is the engine-reported confidence in [0,1], or [ScoreUnsupported]
	// when the engine does not score.
	Score float64
}

// ScoreUnsupported is the sentinel confidence value used when an engine does
// not produce a per-result score.
const ScoreUnsupported = -1.0

// Box is an axis-aligned rectangle in original image coordinates.
type Box struct {
	X, Y, W, H int
}

// Point is a single polygon vertex in original image coordinates.
type Point struct {
	X, Y int
}

// Region is one recognized text region of an image.
type Region struct {
	// Text is the recognized content of the region.
	Text string

	// Confidence is in [0,1].
	Confidence float64

	// Box bounds the region in the original image coordinate system, never
	// the internally resized one.
	Box Box

	// Polygon is the oriented quadrilateral of the region, clockwise from
	// top-left, in original coordinates.
	Polygon [4]Point

	// LineIndex is assigned top-to-bottom and increases monotonically within
	// one result.
	LineIndex int
}

// Recognition is the outcome of recognizing one image.
type Recognition struct {
	// Regions are ordered by LineIndex. An empty slice is a valid success.
	Regions []Region

	// DetectMS and RecognizeMS split the stage timings of a two-stage
	// pipeline. Both are zero for monolithic engines.
	DetectMS    int64
	RecognizeMS int64
}

// Engine is the capability set shared by every back-end.
//
// Load must be called exactly once before serving; it is idempotent after
// success. Warmup failures are logged by callers but must not abort startup.
// Implementations must be safe for concurrent use once loaded.
type Engine interface {
	// Load materializes the model from disk assets and initializes the
	// inference runtime. Missing assets, an absent dependency library, or an
	// accelerator initialization failure surface as [KindModelNotLoaded].
	// Calling Load again after success is a no-op.
	Load(ctx context.Context) error

	// Warmup runs one minimal request per supported direction to pay
	// first-run costs off the serving path. It requires a prior successful
	// Load.
	Warmup(ctx context.Context) error

	// Ready reports whether Load has succeeded. It is cheap and non-blocking.
	Ready() bool

	// HealthCheck may probe deeper than Ready; the default contract is
	// equality with Ready.
	HealthCheck(ctx context.Context) error

	// Info returns the engine's display name, version, and declared language
	// enumeration.
	Info() Info

	// SupportedLanguages returns the declared client-facing enumeration.
	SupportedLanguages() []string

	// Close releases model memory and runtime handles. Safe to call more
	// than once.
	Close() error
}

// Translator is a machine-translation engine.
type Translator interface {
	Engine

	// Translate translates text from src to tgt. Both codes must be in the
	// declared enumeration; anything else is [KindUnsupportedLanguage] and
	// never reaches the generator.
	Translate(ctx context.Context, text, src, tgt string) (Translation, error)

	// TranslateBatch translates texts sharing one language pair. The result
	// slice is positionally aligned with texts; empty inputs yield empty
	// outputs in place without being sent to the model. A batch larger than
	// [Translator.MaxBatchSize] is [KindBatchSizeExceeded].
	TranslateBatch(ctx context.Context, texts []string, src, tgt string) ([]Translation, error)

	// MaxBatchSize is the engine's static upper bound on one model call.
	MaxBatchSize() int
}

// Recognizer is an OCR engine.
type Recognizer interface {
	Engine

	// Recognize decodes imageData, runs detection and recognition, and
	// returns regions in original image coordinates. A malformed or oversize
	// image is [KindInvalidInput]; zero detected regions is a success with an
	// empty list.
	Recognize(ctx context.Context, imageData []byte, languages []string) (*Recognition, error)
}
