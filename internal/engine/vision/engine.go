// Package vision implements the OCR engine behind the [engine.Recognizer]
// contract as a hybrid pipeline: a lightweight quantized detector produces a
// segmentation mask, connected-component extraction yields line rectangles,
// and the cropped lines are batched into a heavier CTC recognizer.
//
// The two stages warm up independently and report independent timings. All
// returned coordinates are expressed in the original image system; the
// internal resize to the working resolution is invisible to callers.
package vision

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kotobatl/kotoba/internal/accel"
	"github.com/kotobatl/kotoba/internal/engine"
)

// Compile-time assertion that Engine satisfies engine.Recognizer.
var _ engine.Recognizer = (*Engine)(nil)

// Version is the engine version string reported on every response.
const Version = "2.1.0"

// cropPadding grows each detected rectangle slightly before cropping, so
// ascenders and descenders clipped by the mask still reach the recognizer.
const cropPadding = 5

// recognitionLanguages is the closed enumeration of script hints the
// recognizer's charset covers.
var recognitionLanguages = []string{"en", "ja", "ko", "zh-cn", "zh-tw"}

// Config configures an OCR [Engine].
type Config struct {
	// Dir is the model asset directory.
	Dir string

	// Device selects the execution provider for both stages.
	Device accel.Device

	// ComputeType selects the quantization variant of the weight files.
	ComputeType string

	// ReclaimEvery triggers memory reclamation after this many completed
	// recognitions. Default 1000.
	ReclaimEvery int
}

// Engine is the hybrid detector+recognizer OCR engine.
type Engine struct {
	cfg  Config
	name string

	loadMu sync.Mutex
	loaded atomic.Bool

	det detector
	rec recognizer

	completed atomic.Uint64
	closeOnce sync.Once
}

// New constructs an unloaded engine. Call [Engine.Load] before serving.
func New(cfg Config) *Engine {
	if cfg.ComputeType == "" {
		cfg.ComputeType = "int8"
	}
	if cfg.ReclaimEvery <= 0 {
		cfg.ReclaimEvery = 1000
	}
	return &Engine{cfg: cfg, name: "ocr-hybrid"}
}

// BundleFiles lists the asset files the engine reads for the given compute
// type.
func BundleFiles(computeType string) []string {
	return []string{
		detFile(computeType),
		recFile(computeType),
		"charset.txt",
	}
}

func detFile(computeType string) string {
	if computeType == "" || computeType == "float32" {
		return "det_model.onnx"
	}
	return "det_model_" + computeType + ".onnx"
}

func recFile(computeType string) string {
	if computeType == "" || computeType == "float32" {
		return "rec_model.onnx"
	}
	return "rec_model_" + computeType + ".onnx"
}

// Load materializes both stage models. Idempotent after success.
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

	det, err := newOnnxDetector(filepath.Join(e.cfg.Dir, detFile(e.cfg.ComputeType)), e.cfg.Device)
	if err != nil {
		return engine.Errorf(engine.KindModelNotLoaded, "%w", err)
	}
	rec, err := newOnnxRecognizer(
		filepath.Join(e.cfg.Dir, recFile(e.cfg.ComputeType)),
		filepath.Join(e.cfg.Dir, "charset.txt"),
		e.cfg.Device,
	)
	if err != nil {
		det.close()
		return engine.Errorf(engine.KindModelNotLoaded, "%w", err)
	}

	e.det = det
	e.rec = rec
	e.loaded.Store(true)

	slog.Info("ocr engine loaded",
		"name", e.name, "version", Version,
		"dir", e.cfg.Dir, "device", e.cfg.Device, "compute_type", e.cfg.ComputeType)
	return nil
}

// Warmup exercises both stages on a tiny synthetic image so first-run costs
// are paid off the serving path. Stage failures are logged, never fatal.
func (e *Engine) Warmup(ctx context.Context) error {
	if !e.loaded.Load() {
		return engine.Errorf(engine.KindModelNotLoaded, "warmup before load")
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 12; y < 20; y++ {
		for x := 8; x < 56; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	if _, err := e.det.detect(ctx, img); err != nil {
		slog.Warn("detector warmup failed", "err", err)
	}
	if _, err := e.rec.recognize(ctx, []*image.RGBA{img}); err != nil {
		slog.Warn("recognizer warmup failed", "err", err)
	}
	return nil
}

// Ready reports whether Load succeeded.
func (e *Engine) Ready() bool { return e.loaded.Load() }

// HealthCheck equals Ready.
func (e *Engine) HealthCheck(context.Context) error {
	if !e.Ready() {
		return engine.Errorf(engine.KindModelNotLoaded, "ocr engine not loaded")
	}
	return nil
}

// Info returns the engine identity and language enumeration.
func (e *Engine) Info() engine.Info {
	return engine.Info{
		Name:      e.name,
		Version:   Version,
		Languages: slices.Clone(recognitionLanguages),
	}
}

// SupportedLanguages returns the declared enumeration.
func (e *Engine) SupportedLanguages() []string { return slices.Clone(recognitionLanguages) }

// Close destroys both stage sessions.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.loaded.Store(false)
		if e.rec != nil {
			err = e.rec.close()
		}
		if e.det != nil {
			if cerr := e.det.close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}

// Recognize runs the full detect → crop → recognize pipeline. Zero detected
// regions is a success with an empty list; a malformed image is
// [engine.KindInvalidInput], never a crash.
func (e *Engine) Recognize(ctx context.Context, imageData []byte, languages []string) (*engine.Recognition, error) {
	if !e.loaded.Load() {
		return nil, engine.Errorf(engine.KindModelNotLoaded, "ocr engine not loaded")
	}
	// Ceiling check comes before any decode attempt.
	if len(imageData) > maxImageBytes {
		return nil, engine.Errorf(engine.KindInvalidInput,
			"image payload of %d bytes exceeds the %d byte ceiling", len(imageData), maxImageBytes)
	}
	if len(imageData) == 0 {
		return nil, engine.Errorf(engine.KindInvalidInput, "image payload is empty")
	}
	for _, lang := range languages {
		if !slices.Contains(recognitionLanguages, lang) {
			return nil, engine.Errorf(engine.KindUnsupportedLanguage,
				"language hint %q is not supported; supported: %v", lang, recognitionLanguages)
		}
	}

	rec, err := e.recognizeFrame(ctx, imageData)
	if err != nil {
		accel.Reclaim()
		if accel.IsOOM(err) {
			return nil, engine.Errorf(engine.KindResourceExhausted, "accelerator out of memory: %w", err)
		}
		return nil, engine.Coerce(err)
	}
	if n := e.completed.Add(1); n%uint64(e.cfg.ReclaimEvery) == 0 {
		accel.Reclaim()
	}
	return rec, nil
}

func (e *Engine) recognizeFrame(ctx context.Context, imageData []byte) (*engine.Recognition, error) {
	f, err := decodeFrame(imageData)
	if err != nil {
		return nil, engine.Errorf(engine.KindInvalidInput, "%w", err)
	}

	detStart := time.Now()
	m, err := e.det.detect(ctx, f.img)
	if err != nil {
		return nil, err
	}
	comps := extractComponents(m)
	detMS := time.Since(detStart).Milliseconds()

	if len(comps) == 0 {
		return &engine.Recognition{Regions: []engine.Region{}, DetectMS: detMS}, nil
	}

	crops := make([]*image.RGBA, len(comps))
	for i, c := range comps {
		crops[i] = f.crop(c.rect.Inset(-cropPadding))
	}

	recStart := time.Now()
	lines, err := e.rec.recognize(ctx, crops)
	if err != nil {
		return nil, err
	}
	recMS := time.Since(recStart).Milliseconds()

	regions := make([]engine.Region, 0, len(comps))
	for i, c := range comps {
		line := lines[i]
		conf := line.confidence
		if !line.hasConfidence {
			// Proxy from the detector mask when the recognizer does not
			// score this line.
			conf = c.meanActivation
		}
		regions = append(regions, buildRegion(f, c.rect, line.text, conf))
	}

	return &engine.Recognition{
		Regions:     finishRegions(regions),
		DetectMS:    detMS,
		RecognizeMS: recMS,
	}, nil
}

// buildRegion maps a working-image rectangle back to original coordinates
// and fills the four-point polygon clockwise from top-left.
func buildRegion(f *frame, r image.Rectangle, text string, conf float64) engine.Region {
	x0, y0 := f.toOriginal(r.Min.X, r.Min.Y)
	x1, y1 := f.toOriginal(r.Max.X, r.Max.Y)
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}
	return engine.Region{
		Text:       text,
		Confidence: conf,
		Box:        engine.Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0},
		Polygon: [4]engine.Point{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		},
	}
}
