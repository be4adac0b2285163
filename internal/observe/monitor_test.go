package observe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// testMonitor builds a monitor with injected readers so the tests neither
// touch the real process tables nor need an accelerator present.
func testMonitor(proc procStats, gpu gpuStats) *Monitor {
	return &Monitor{
		interval: time.Hour,
		readProc: proc,
		readGPU:  gpu,
		done:     make(chan struct{}),
	}
}

func healthyProc() (uint64, uint64, int32, int32, error) {
	return 200 << 20, 400 << 20, 120, 30, nil
}

// captureLog routes slog output to a buffer for the duration of the test.
func captureLog(t *testing.T) func() string {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&syncWriter{w: &buf, mu: &mu}, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return buf.String()
	}
}

type syncWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func TestMonitor_SampleStored(t *testing.T) {
	logs := captureLog(t)
	m := testMonitor(healthyProc, func() (uint64, uint64, error) {
		return 2 << 30, 8 << 30, nil
	})

	m.sample()

	s := m.Last()
	if s == nil {
		t.Fatal("no sample stored")
	}
	if s.RSS != 200<<20 || s.Handles != 120 || s.Threads != 30 {
		t.Errorf("sample = %+v", s)
	}
	if s.VRAMUsed != 2<<30 || s.VRAMTotal != 8<<30 {
		t.Errorf("vram = %d/%d", s.VRAMUsed, s.VRAMTotal)
	}
	if got := m.VRAMUtilization(); got != 0.25 {
		t.Errorf("VRAMUtilization = %v, want 0.25", got)
	}
	if out := logs(); !strings.Contains(out, "resource sample") {
		t.Errorf("missing sample line: %s", out)
	}
}

func TestMonitor_VRAMUnknown(t *testing.T) {
	m := testMonitor(healthyProc, nil)
	if got := m.VRAMUtilization(); got >= 0 {
		t.Errorf("VRAMUtilization before any sample = %v, want negative", got)
	}

	m.sample()
	if got := m.VRAMUtilization(); got >= 0 {
		t.Errorf("VRAMUtilization with no accelerator = %v, want negative", got)
	}
}

func TestMonitor_Alerts(t *testing.T) {
	tests := []struct {
		name string
		proc procStats
		gpu  gpuStats
		want string
	}{
		{
			name: "vram leak",
			proc: healthyProc,
			gpu:  func() (uint64, uint64, error) { return 95 << 28, 100 << 28, nil },
			want: "critical: VRAM utilization above threshold",
		},
		{
			name: "handle leak",
			proc: func() (uint64, uint64, int32, int32, error) {
				return 200 << 20, 400 << 20, 10_001, 30, nil
			},
			want: "critical: OS handle count above threshold",
		},
		{
			name: "rss advisory",
			proc: func() (uint64, uint64, int32, int32, error) {
				return 2 << 30, 4 << 30, 120, 30, nil
			},
			want: "RSS above 1 GiB",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLog(t)
			m := testMonitor(tc.proc, tc.gpu)
			m.sample()
			if out := logs(); !strings.Contains(out, tc.want) {
				t.Errorf("missing %q in:\n%s", tc.want, out)
			}
		})
	}
}

func TestMonitor_NoAlertsWhenHealthy(t *testing.T) {
	logs := captureLog(t)
	m := testMonitor(healthyProc, func() (uint64, uint64, error) {
		return 2 << 30, 8 << 30, nil
	})
	m.sample()
	if out := logs(); strings.Contains(out, "critical") {
		t.Errorf("unexpected alert in:\n%s", out)
	}
}

func TestMonitor_StartAndStop(t *testing.T) {
	captureLog(t)
	m := testMonitor(healthyProc, nil)
	m.interval = time.Millisecond

	m.Start()
	deadline := time.Now().Add(2 * time.Second)
	for m.Last() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if m.Last() == nil {
		t.Fatal("no sample after Start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// Idempotent.
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestMonitor_SampleErrorKeepsPrevious(t *testing.T) {
	captureLog(t)
	m := testMonitor(healthyProc, nil)
	m.sample()
	first := m.Last()

	m.readProc = func() (uint64, uint64, int32, int32, error) {
		return 0, 0, 0, 0, context.DeadlineExceeded
	}
	m.sample()
	if m.Last() != first {
		t.Error("failed sample must not replace the last good one")
	}
}
