// Package nmt implements the machine-translation engine: a quantized
// encoder-decoder ONNX pair behind the [engine.Translator] contract.
//
// The request pipeline is: normalize language codes → tokenize with the
// source-language tag and end-of-sequence marker → enforce the decoding
// limit → beam-search generation with the target-language tag forced →
// detokenize → strip language tags and special tokens. Language validation
// failures never reach the generator.
package nmt

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kotobatl/kotoba/internal/accel"
	"github.com/kotobatl/kotoba/internal/engine"
)

// Compile-time assertion that Engine satisfies engine.Translator.
var _ engine.Translator = (*Engine)(nil)

// Version is the engine version string reported on every response.
const Version = "1.4.2"

// Defaults for the bounded inference worker pool and memory discipline.
const (
	defaultWorkers      = 4
	defaultQueueDepth   = 2
	defaultReclaimEvery = 1000
	defaultMaxBatch     = 32
)

// singleParams are the generation parameters for single requests.
var singleParams = genParams{
	BeamSize:          4,
	MaxLength:         256,
	RepetitionPenalty: 1.2,
	NoRepeatNGram:     3,
	LengthPenalty:     1.0,
}

// batchParams match singleParams except for a smaller max length, keeping the
// padding rectangle of a batch manageable.
var batchParams = genParams{
	BeamSize:          4,
	MaxLength:         128,
	RepetitionPenalty: 1.2,
	NoRepeatNGram:     3,
	LengthPenalty:     1.0,
}

// Config configures an NMT [Engine].
type Config struct {
	// Dir is the model asset directory. Read-only from the engine's
	// perspective.
	Dir string

	// Device selects the execution provider. Resolve with [accel.Probe]
	// before constructing the engine.
	Device accel.Device

	// ComputeType selects the quantization variant of the weight files,
	// e.g. "int8".
	ComputeType string

	// Workers bounds concurrent generator calls. Default 4.
	Workers int

	// QueueDepth bounds batches waiting for a worker. Default 2.
	QueueDepth int

	// ReclaimEvery triggers memory reclamation after this many completed
	// translations. Default 1000.
	ReclaimEvery int
}

// Engine is the quantized encoder-decoder translation engine.
type Engine struct {
	cfg  Config
	name string

	loadMu sync.Mutex
	loaded atomic.Bool

	codec codec
	gen   generator
	pool  *workerPool

	// completed counts finished translations for the reclamation interval.
	completed atomic.Uint64

	closeOnce sync.Once
}

// New constructs an unloaded engine. Call [Engine.Load] before serving.
func New(cfg Config) *Engine {
	if cfg.ComputeType == "" {
		cfg.ComputeType = "int8"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	if cfg.ReclaimEvery <= 0 {
		cfg.ReclaimEvery = defaultReclaimEvery
	}
	return &Engine{
		cfg:  cfg,
		name: "nmt-" + cfg.ComputeType,
	}
}

// BundleFiles lists the asset files the engine reads for the given compute
// type, for presence checks and provisioning.
func BundleFiles(computeType string) []string {
	return []string{
		"tokenizer.json",
		"config.json",
		modelFile("encoder_model", computeType),
		modelFile("decoder_model", computeType),
	}
}

func modelFile(stem, computeType string) string {
	if computeType == "" || computeType == "float32" {
		return stem + ".onnx"
	}
	return stem + "_" + computeType + ".onnx"
}

// Load materializes the tokenizer and ONNX sessions. Idempotent after
// success.
func (e *Engine) Load(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if e.loaded.Load() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, name := range BundleFiles(e.cfg.ComputeType) {
		p := filepath.Join(e.cfg.Dir, name)
		if _, err := os.Stat(p); err != nil {
			return engine.Errorf(engine.KindModelNotLoaded, "missing model asset %q: %w", p, err)
		}
	}

	c, err := newHFCodec(filepath.Join(e.cfg.Dir, "tokenizer.json"))
	if err != nil {
		return engine.Errorf(engine.KindModelNotLoaded, "%w", err)
	}
	eosID, ok := c.tokenID(eosToken)
	if !ok {
		return engine.Errorf(engine.KindModelNotLoaded, "tokenizer defines no %q token", eosToken)
	}

	gen, err := newOnnxGenerator(
		filepath.Join(e.cfg.Dir, modelFile("encoder_model", e.cfg.ComputeType)),
		filepath.Join(e.cfg.Dir, modelFile("decoder_model", e.cfg.ComputeType)),
		e.cfg.Device, eosID,
	)
	if err != nil {
		return engine.Errorf(engine.KindModelNotLoaded, "%w", err)
	}

	e.codec = c
	e.gen = gen
	e.pool = newWorkerPool(e.cfg.Workers, e.cfg.QueueDepth)
	e.loaded.Store(true)

	slog.Info("translation engine loaded",
		"name", e.name, "version", Version,
		"dir", e.cfg.Dir, "device", e.cfg.Device, "compute_type", e.cfg.ComputeType,
		"languages", len(languageTable))
	return nil
}

// Warmup pays first-run costs for every supported direction out of English.
// Failures are logged, never fatal.
func (e *Engine) Warmup(ctx context.Context) error {
	if !e.loaded.Load() {
		return engine.Errorf(engine.KindModelNotLoaded, "warmup before load")
	}
	for _, tgt := range Languages() {
		if tgt == "en" {
			continue
		}
		if _, err := e.Translate(ctx, "Hi", "en", tgt); err != nil {
			slog.Warn("warmup direction failed", "src", "en", "tgt", tgt, "err", err)
		}
	}
	return nil
}

// Ready reports whether Load succeeded.
func (e *Engine) Ready() bool { return e.loaded.Load() }

// HealthCheck equals Ready.
func (e *Engine) HealthCheck(context.Context) error {
	if !e.Ready() {
		return engine.Errorf(engine.KindModelNotLoaded, "translation engine not loaded")
	}
	return nil
}

// Info returns the engine identity and language enumeration.
func (e *Engine) Info() engine.Info {
	return engine.Info{Name: e.name, Version: Version, Languages: Languages()}
}

// SupportedLanguages returns the declared enumeration.
func (e *Engine) SupportedLanguages() []string { return Languages() }

// MaxBatchSize is the static upper bound of one model call.
func (e *Engine) MaxBatchSize() int { return defaultMaxBatch }

// Close joins the worker pool and destroys the ONNX sessions.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.loaded.Store(false)
		if e.pool != nil {
			e.pool.Close()
		}
		if e.gen != nil {
			err = e.gen.close()
		}
	})
	return err
}

// Translate translates a single text. See the package comment for the
// pipeline.
func (e *Engine) Translate(ctx context.Context, text, src, tgt string) (engine.Translation, error) {
	out, err := e.run(ctx, text, src, tgt, singleParams)
	if err != nil {
		return engine.Translation{}, e.fail(err)
	}
	e.finish()
	return out, nil
}

// TranslateBatch translates texts sharing one language pair on a single
// worker slot. Empty inputs stay empty in place and are never sent to the
// model; results align positionally with texts.
func (e *Engine) TranslateBatch(ctx context.Context, texts []string, src, tgt string) ([]engine.Translation, error) {
	if len(texts) > e.MaxBatchSize() {
		return nil, engine.Errorf(engine.KindBatchSizeExceeded,
			"batch of %d exceeds engine max %d", len(texts), e.MaxBatchSize())
	}
	if !e.loaded.Load() {
		return nil, engine.Errorf(engine.KindModelNotLoaded, "translation engine not loaded")
	}
	// Validate the pair once, before any tokenization.
	if _, err := modelCode(src); err != nil {
		return nil, err
	}
	if _, err := modelCode(tgt); err != nil {
		return nil, err
	}

	out := make([]engine.Translation, len(texts))
	err := e.pool.Do(ctx, func() error {
		for i, text := range texts {
			if strings.TrimSpace(text) == "" {
				out[i] = engine.Translation{Score: engine.ScoreUnsupported}
				continue
			}
			tr, err := e.translateLocked(ctx, text, src, tgt, batchParams)
			if err != nil {
				return err
			}
			out[i] = tr
		}
		return nil
	})
	if err != nil {
		return nil, e.fail(err)
	}
	for range texts {
		e.finish()
	}
	return out, nil
}

// run performs one single-request translation on the worker pool.
func (e *Engine) run(ctx context.Context, text, src, tgt string, p genParams) (engine.Translation, error) {
	if !e.loaded.Load() {
		return engine.Translation{}, engine.Errorf(engine.KindModelNotLoaded, "translation engine not loaded")
	}
	if strings.TrimSpace(text) == "" {
		return engine.Translation{}, engine.Errorf(engine.KindInvalidInput, "source text is empty")
	}

	p = clampParams(ctx, p)

	var out engine.Translation
	err := e.pool.Do(ctx, func() error {
		tr, err := e.translateLocked(ctx, text, src, tgt, p)
		if err != nil {
			return err
		}
		out = tr
		return nil
	})
	return out, err
}

// clampParams applies request options from ctx. Overrides only ever tighten
// the defaults, so a caller cannot request more work than the engine allows.
func clampParams(ctx context.Context, p genParams) genParams {
	o, ok := engine.OptionsFrom(ctx)
	if !ok {
		return p
	}
	if o.MaxLength > 0 && o.MaxLength < p.MaxLength {
		p.MaxLength = o.MaxLength
	}
	if o.BeamSize > 0 && o.BeamSize < p.BeamSize {
		p.BeamSize = o.BeamSize
	}
	return p
}

// translateLocked runs the tokenize → generate → detokenize pipeline. The
// caller must already hold a worker slot.
func (e *Engine) translateLocked(ctx context.Context, text, src, tgt string, p genParams) (engine.Translation, error) {
	srcTag, err := modelCode(src)
	if err != nil {
		return engine.Translation{}, err
	}
	tgtTag, err := modelCode(tgt)
	if err != nil {
		return engine.Translation{}, err
	}

	ids, err := e.codec.encode(text, srcTag)
	if err != nil {
		return engine.Translation{}, engine.Errorf(engine.KindInferenceFailed, "tokenize: %w", err)
	}
	if len(ids) > p.MaxLength {
		return engine.Translation{}, engine.Errorf(engine.KindTextTooLong,
			"source tokenizes to %d tokens, limit %d", len(ids), p.MaxLength)
	}

	tgtID, ok := e.codec.tokenID(tgtTag)
	if !ok {
		return engine.Translation{}, engine.Errorf(engine.KindInferenceFailed,
			"tokenizer has no id for language tag %q", tgtTag)
	}

	outIDs, score, err := e.gen.generate(ctx, ids, tgtID, p)
	if err != nil {
		if ctx.Err() != nil {
			return engine.Translation{}, ctx.Err()
		}
		return engine.Translation{}, engine.Coerce(err)
	}

	raw, err := e.codec.decode(outIDs)
	if err != nil {
		return engine.Translation{}, engine.Errorf(engine.KindInferenceFailed, "detokenize: %w", err)
	}
	return engine.Translation{Text: stripTokens(raw), Score: score}, nil
}

// stripTokens removes every declared language-tag token and the BOS, EOS,
// PAD and UNK specials from decoded output. The tag list is derived from the
// same enumeration used for validation.
func stripTokens(s string) string {
	for _, tag := range tagTokens() {
		s = strings.ReplaceAll(s, tag, "")
	}
	for _, special := range []string{bosToken, eosToken, padToken, unkToken} {
		s = strings.ReplaceAll(s, special, "")
	}
	return strings.Join(strings.Fields(s), " ")
}

// finish advances the completion counter and reclaims memory every
// ReclaimEvery completions. Absent this, long sessions leak VRAM.
func (e *Engine) finish() {
	if n := e.completed.Add(1); n%uint64(e.cfg.ReclaimEvery) == 0 {
		slog.Debug("periodic memory reclamation", "completed", n)
		accel.Reclaim()
	}
}

// fail classifies err, reclaiming memory on every error path. An accelerator
// OOM reclaims first and surfaces as retryable resource exhaustion.
func (e *Engine) fail(err error) error {
	accel.Reclaim()
	if accel.IsOOM(err) {
		return engine.Errorf(engine.KindResourceExhausted, "accelerator out of memory: %w", err)
	}
	if ke := engine.KindOf(err); ke != engine.KindUnknown {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return engine.Coerce(err)
}

// Completed returns the number of finished translations, for diagnostics.
func (e *Engine) Completed() uint64 { return e.completed.Load() }
