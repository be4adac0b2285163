package nmt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kotobatl/kotoba/internal/engine"
)

// ─── fakes ───────────────────────────────────────────────────────────────────

// fakeCodec produces one id per whitespace field, bracketed by the source tag
// and the end-of-sequence marker, and decodes to a scripted string.
type fakeCodec struct {
	decoded   string
	encodeErr error

	decodedIDs []int64
}

func (c *fakeCodec) encode(text, srcTag string) ([]int64, error) {
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	fields := strings.Fields(text)
	ids := make([]int64, 0, len(fields)+2)
	ids = append(ids, int64(len(srcTag)))
	for i := range fields {
		ids = append(ids, int64(10+i))
	}
	return append(ids, 2), nil
}

func (c *fakeCodec) decode(ids []int64) (string, error) {
	c.decodedIDs = ids
	return c.decoded, nil
}

func (c *fakeCodec) tokenID(token string) (int64, bool) {
	return int64(len(token)), true
}

// fakeGen records every generate call and returns a scripted result.
type fakeGen struct {
	out   []int64
	score float64
	err   error

	calls  [][]int64
	forced []int64
	params []genParams
}

func (g *fakeGen) generate(_ context.Context, inputIDs []int64, forcedBOS int64, p genParams) ([]int64, float64, error) {
	g.calls = append(g.calls, inputIDs)
	g.forced = append(g.forced, forcedBOS)
	g.params = append(g.params, p)
	if g.err != nil {
		return nil, 0, g.err
	}
	return g.out, g.score, nil
}

func (g *fakeGen) close() error { return nil }

func newTestEngine(t *testing.T, gen *fakeGen, c *fakeCodec) *Engine {
	t.Helper()
	e := New(Config{ComputeType: "int8"})
	e.codec = c
	e.gen = gen
	e.pool = newWorkerPool(1, 1)
	e.loaded.Store(true)
	t.Cleanup(e.pool.Close)
	return e
}

// ─── tests ───────────────────────────────────────────────────────────────────

func TestTranslate(t *testing.T) {
	gen := &fakeGen{out: []int64{7, 8, 9}, score: 0.92}
	c := &fakeCodec{decoded: "jpn_Jpan こんにちは </s>"}
	e := newTestEngine(t, gen, c)

	got, err := e.Translate(context.Background(), "Hello", "en", "ja")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.Text != "こんにちは" {
		t.Errorf("Text = %q, want tags and specials stripped", got.Text)
	}
	if got.Score != 0.92 {
		t.Errorf("Score = %v, want 0.92", got.Score)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	if want := int64(len("jpn_Jpan")); gen.forced[0] != want {
		t.Errorf("forced BOS = %d, want the target tag id %d", gen.forced[0], want)
	}
	if e.Completed() != 1 {
		t.Errorf("Completed = %d, want 1", e.Completed())
	}
}

func TestTranslate_UnsupportedLanguageNeverReachesGenerator(t *testing.T) {
	gen := &fakeGen{}
	e := newTestEngine(t, gen, &fakeCodec{})

	tests := []struct{ src, tgt string }{
		{"xx", "ja"},
		{"en", "xx"},
	}
	for _, tc := range tests {
		_, err := e.Translate(context.Background(), "Hello", tc.src, tc.tgt)
		if got := engine.KindOf(err); got != engine.KindUnsupportedLanguage {
			t.Errorf("(%s→%s) kind = %v, want %v", tc.src, tc.tgt, got, engine.KindUnsupportedLanguage)
		}
	}
	if len(gen.calls) != 0 {
		t.Errorf("generator called %d times on invalid pairs, want 0", len(gen.calls))
	}
}

func TestTranslate_EmptyText(t *testing.T) {
	e := newTestEngine(t, &fakeGen{}, &fakeCodec{})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := e.Translate(context.Background(), text, "en", "ja")
		if got := engine.KindOf(err); got != engine.KindInvalidInput {
			t.Errorf("text %q kind = %v, want %v", text, got, engine.KindInvalidInput)
		}
	}
}

func TestTranslate_NotLoaded(t *testing.T) {
	e := New(Config{})

	_, err := e.Translate(context.Background(), "Hello", "en", "ja")
	if got := engine.KindOf(err); got != engine.KindModelNotLoaded {
		t.Errorf("kind = %v, want %v", got, engine.KindModelNotLoaded)
	}
	if e.Ready() {
		t.Error("Ready should be false before Load")
	}
	if err := e.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck should fail before Load")
	}
}

func TestTranslate_RequestOptionsTightenOnly(t *testing.T) {
	gen := &fakeGen{out: []int64{7}, score: 0.5}
	e := newTestEngine(t, gen, &fakeCodec{decoded: "x"})

	// A lower max length applies; the fake codec emits 5 ids for this text.
	ctx := engine.WithOptions(context.Background(), engine.Options{MaxLength: 3})
	_, err := e.Translate(ctx, "one two three", "en", "ja")
	if got := engine.KindOf(err); got != engine.KindTextTooLong {
		t.Fatalf("kind = %v, want %v", got, engine.KindTextTooLong)
	}
	if len(gen.calls) != 0 {
		t.Fatal("over-limit input must not reach the generator")
	}

	// A larger beam than the default must not widen the search.
	ctx = engine.WithOptions(context.Background(), engine.Options{BeamSize: 99, MaxLength: 9999})
	if _, err := e.Translate(ctx, "hi", "en", "ja"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got := gen.params[0]; got.BeamSize != singleParams.BeamSize || got.MaxLength != singleParams.MaxLength {
		t.Errorf("params = %+v, options may only tighten defaults %+v", got, singleParams)
	}

	// A smaller beam applies.
	ctx = engine.WithOptions(context.Background(), engine.Options{BeamSize: 1})
	if _, err := e.Translate(ctx, "hi", "en", "ja"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got := gen.params[1].BeamSize; got != 1 {
		t.Errorf("BeamSize = %d, want 1", got)
	}
}

func TestTranslate_OOMIsRetryableExhaustion(t *testing.T) {
	gen := &fakeGen{err: errors.New("onnxruntime: CUDA failure: out of memory")}
	e := newTestEngine(t, gen, &fakeCodec{})

	_, err := e.Translate(context.Background(), "Hello", "en", "ja")
	if got := engine.KindOf(err); got != engine.KindResourceExhausted {
		t.Errorf("kind = %v, want %v", got, engine.KindResourceExhausted)
	}
}

func TestTranslate_GeneratorErrorCoerced(t *testing.T) {
	cause := errors.New("invalid tensor shape")
	gen := &fakeGen{err: cause}
	e := newTestEngine(t, gen, &fakeCodec{})

	_, err := e.Translate(context.Background(), "Hello", "en", "ja")
	if got := engine.KindOf(err); got != engine.KindInferenceFailed {
		t.Errorf("kind = %v, want %v", got, engine.KindInferenceFailed)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should stay reachable via errors.Is")
	}
}

func TestTranslateBatch_AlignmentAndEmptyPassthrough(t *testing.T) {
	gen := &fakeGen{out: []int64{7}, score: 0.8}
	e := newTestEngine(t, gen, &fakeCodec{decoded: "out"})

	texts := []string{"first", "", "third", "   "}
	out, err := e.TranslateBatch(context.Background(), texts, "en", "ja")
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if len(out) != len(texts) {
		t.Fatalf("got %d results for %d texts", len(out), len(texts))
	}
	for _, i := range []int{0, 2} {
		if out[i].Text != "out" || out[i].Score != 0.8 {
			t.Errorf("out[%d] = %+v, want translated", i, out[i])
		}
	}
	for _, i := range []int{1, 3} {
		if out[i].Text != "" || out[i].Score != engine.ScoreUnsupported {
			t.Errorf("out[%d] = %+v, want empty passthrough", i, out[i])
		}
	}
	// Blank entries never cost a model call.
	if len(gen.calls) != 2 {
		t.Errorf("generator called %d times, want 2", len(gen.calls))
	}
	if gen.params[0].MaxLength != batchParams.MaxLength {
		t.Errorf("batch MaxLength = %d, want %d", gen.params[0].MaxLength, batchParams.MaxLength)
	}
}

func TestTranslateBatch_SizeExceeded(t *testing.T) {
	e := newTestEngine(t, &fakeGen{}, &fakeCodec{})

	texts := make([]string, e.MaxBatchSize()+1)
	for i := range texts {
		texts[i] = "x"
	}
	_, err := e.TranslateBatch(context.Background(), texts, "en", "ja")
	if got := engine.KindOf(err); got != engine.KindBatchSizeExceeded {
		t.Errorf("kind = %v, want %v", got, engine.KindBatchSizeExceeded)
	}
}

func TestTranslateBatch_InvalidPairBeforeTokenization(t *testing.T) {
	gen := &fakeGen{}
	e := newTestEngine(t, gen, &fakeCodec{})

	_, err := e.TranslateBatch(context.Background(), []string{"a", "b"}, "en", "nope")
	if got := engine.KindOf(err); got != engine.KindUnsupportedLanguage {
		t.Errorf("kind = %v, want %v", got, engine.KindUnsupportedLanguage)
	}
	if len(gen.calls) != 0 {
		t.Error("invalid pair must not reach the generator")
	}
}

func TestStripTokens(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jpn_Jpan こんにちは </s>", "こんにちは"},
		{"<s> eng_Latn Hello world </s> <pad> <pad>", "Hello world"},
		{"deu_Latn Hallo <unk> Welt", "Hallo Welt"},
		{"plain text untouched", "plain text untouched"},
		{"</s>", ""},
	}
	for _, tc := range tests {
		if got := stripTokens(tc.in); got != tc.want {
			t.Errorf("stripTokens(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReclaimCounter(t *testing.T) {
	gen := &fakeGen{out: []int64{7}, score: 0.5}
	e := newTestEngine(t, gen, &fakeCodec{decoded: "x"})
	e.cfg.ReclaimEvery = 2

	for i := 0; i < 5; i++ {
		if _, err := e.Translate(context.Background(), "hi", "en", "ja"); err != nil {
			t.Fatalf("Translate %d: %v", i, err)
		}
	}
	if e.Completed() != 5 {
		t.Errorf("Completed = %d, want 5", e.Completed())
	}
}

func TestInfoAndEnumeration(t *testing.T) {
	e := New(Config{ComputeType: "float16"})

	info := e.Info()
	if info.Name != "nmt-float16" {
		t.Errorf("Name = %q, want nmt-float16", info.Name)
	}
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if len(info.Languages) != len(languageTable) {
		t.Errorf("Languages = %d entries, want %d", len(info.Languages), len(languageTable))
	}
	if e.MaxBatchSize() != defaultMaxBatch {
		t.Errorf("MaxBatchSize = %d, want %d", e.MaxBatchSize(), defaultMaxBatch)
	}
}

func TestBundleFiles(t *testing.T) {
	files := BundleFiles("int8")
	want := map[string]bool{
		"tokenizer.json":          true,
		"config.json":             true,
		"encoder_model_int8.onnx": true,
		"decoder_model_int8.onnx": true,
	}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected bundle file %q", f)
		}
	}
	if len(files) != len(want) {
		t.Errorf("got %d files, want %d", len(files), len(want))
	}

	for _, f := range BundleFiles("float32") {
		if strings.Contains(f, "float32") {
			t.Errorf("float32 uses the unsuffixed model files, got %q", f)
		}
	}
}
