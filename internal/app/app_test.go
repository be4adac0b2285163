package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	kotobav1 "github.com/kotobatl/kotoba/api/kotoba/v1"
	"github.com/kotobatl/kotoba/internal/config"
	"github.com/kotobatl/kotoba/internal/engine"
	"github.com/kotobatl/kotoba/internal/engine/mock"
)

// markerBuffer collects the readiness output. Run writes from its own
// goroutine while the test polls, hence the lock.
type markerBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *markerBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *markerBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForMarker(t *testing.T, buf *markerBuffer) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), ReadyMarker) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("readiness marker never written; output: %q", buf.String())
}

func testConfig(variant config.Variant) *config.Config {
	cfg := config.Default(variant)
	cfg.Port = 0 // let the OS pick a free port
	return &cfg
}

func dial(t *testing.T, a *App) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(a.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestApp_TranslationLifecycle(t *testing.T) {
	tr := &mock.Translator{
		EngineInfo: engine.Info{Name: "mock-nmt", Version: "test", Languages: []string{"en", "ja"}},
		TranslateFunc: func(text, src, tgt string) (engine.Translation, error) {
			return engine.Translation{Text: "«" + text + "»", Score: 0.9}, nil
		},
	}
	buf := &markerBuffer{}

	ctx := context.Background()
	a, err := New(ctx, config.VariantMT, testConfig(config.VariantMT),
		WithTranslator(tr), WithReadinessWriter(buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(runCtx) }()

	// The marker must not appear before the listener accepts calls, so a
	// dial right after seeing it has to succeed.
	waitForMarker(t, buf)

	conn := dial(t, a)
	client := kotobav1.NewTranslationServiceClient(conn)

	callCtx, callCancel := context.WithTimeout(ctx, 5*time.Second)
	defer callCancel()

	resp, err := client.Translate(callCtx, &kotobav1.TranslateRequest{
		RequestId:      "req-1",
		SourceText:     "hello",
		SourceLanguage: &kotobav1.Language{Code: "en"},
		TargetLanguage: &kotobav1.Language{Code: "ja"},
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !resp.IsSuccess || resp.TranslatedText != "«hello»" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.EngineName != "mock-nmt" || resp.EngineVersion != "test" {
		t.Errorf("engine identity = %s/%s", resp.EngineName, resp.EngineVersion)
	}

	health, err := client.HealthCheck(callCtx, &kotobav1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if !health.IsHealthy {
		t.Errorf("health = %+v", health)
	}

	cancel()
	if err := <-runErr; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}

	downCtx, downCancel := context.WithTimeout(ctx, 10*time.Second)
	defer downCancel()
	if err := a.Shutdown(downCtx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if tr.Ready() {
		t.Error("engine still ready after shutdown, Close was not called")
	}
	// Idempotent.
	if err := a.Shutdown(downCtx); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestApp_OcrLifecycle(t *testing.T) {
	rec := &mock.Recognizer{
		EngineInfo: engine.Info{Name: "mock-ocr", Version: "test", Languages: []string{"ja"}},
	}
	buf := &markerBuffer{}

	ctx := context.Background()
	a, err := New(ctx, config.VariantOCR, testConfig(config.VariantOCR),
		WithRecognizer(rec), WithReadinessWriter(buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(runCtx) }()
	waitForMarker(t, buf)

	conn := dial(t, a)
	client := kotobav1.NewOcrServiceClient(conn)

	callCtx, callCancel := context.WithTimeout(ctx, 5*time.Second)
	defer callCancel()
	health, err := client.HealthCheck(callCtx, &kotobav1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if !health.IsHealthy {
		t.Errorf("health = %+v", health)
	}

	cancel()
	<-runErr

	downCtx, downCancel := context.WithTimeout(ctx, 10*time.Second)
	defer downCancel()
	if err := a.Shutdown(downCtx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestApp_LoadFailureSurfacesFromNew(t *testing.T) {
	tr := &mock.Translator{
		EngineInfo: engine.Info{Name: "mock-nmt", Version: "test"},
		LoadErr:    errors.New("weights corrupt"),
	}

	_, err := New(context.Background(), config.VariantMT, testConfig(config.VariantMT),
		WithTranslator(tr), WithReadinessWriter(&markerBuffer{}))
	if err == nil || !strings.Contains(err.Error(), "load engine") {
		t.Fatalf("New err = %v, want a load failure", err)
	}
}
