package accel

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Device selects the execution provider for inference sessions.
type Device string

const (
	// DeviceAuto probes for a compatible accelerator and falls back to CPU.
	DeviceAuto Device = "auto"

	// DeviceCPU forces CPU execution.
	DeviceCPU Device = "cpu"

	// DeviceCUDA requires a CUDA-capable accelerator.
	DeviceCUDA Device = "cuda"
)

// IsValid reports whether d is one of the declared devices.
func (d Device) IsValid() bool {
	switch d {
	case DeviceAuto, DeviceCPU, DeviceCUDA:
		return true
	}
	return false
}

var initMu sync.Mutex

// Init loads the ONNX Runtime shared library and initializes its process-wide
// environment. libPath may be empty, in which case the platform default
// library name is resolved from the search path (which [SanitizeEnv] must
// have cleaned beforehand). Init is idempotent.
func Init(libPath string) error {
	initMu.Lock()
	defer initMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("accel: initialize onnxruntime: %w", err)
	}
	return nil
}

// Shutdown tears down the ONNX Runtime environment. Call once, after all
// sessions are destroyed.
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Probe resolves the requested device against what the inference runtime
// itself reports as actually usable. DeviceAuto
// downgrades to CPU with a log line when no accelerator is available;
// DeviceCUDA fails hard instead, so a misconfigured host is caught at
// startup.
func Probe(requested Device) (Device, error) {
	switch requested {
	case DeviceCPU:
		return DeviceCPU, nil
	case DeviceCUDA, DeviceAuto:
	default:
		return "", fmt.Errorf("accel: unknown device %q", requested)
	}

	opts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		if requested == DeviceCUDA {
			return "", fmt.Errorf("accel: cuda requested but unavailable: %w", err)
		}
		slog.Info("no compatible accelerator found, using CPU", "reason", err)
		return DeviceCPU, nil
	}
	if err := opts.Destroy(); err != nil {
		slog.Warn("destroy cuda probe options", "err", err)
	}
	return DeviceCUDA, nil
}

// SessionOptions builds per-session options for the given device with bounded
// intra-op parallelism. The caller owns the returned options and must destroy
// them after session creation.
func SessionOptions(device Device, intraOpThreads int) (*ort.SessionOptions, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("accel: new session options: %w", err)
	}
	if err := opts.SetIntraOpNumThreads(intraOpThreads); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("accel: set intra-op threads: %w", err)
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("accel: set inter-op threads: %w", err)
	}
	if device == DeviceCUDA {
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			opts.Destroy()
			return nil, fmt.Errorf("accel: cuda provider options: %w", err)
		}
		defer cuda.Destroy()
		if err := opts.AppendExecutionProviderCUDA(cuda); err != nil {
			opts.Destroy()
			return nil, fmt.Errorf("accel: append cuda provider: %w", err)
		}
	}
	return opts, nil
}

// Reclaim asks the runtime to release freeable memory now. Engines call this
// every completion interval and on every caught error path; without it, long
// sessions leak VRAM through deferred frees.
func Reclaim() {
	runtime.GC()
	debug.FreeOSMemory()
}

// oomFragments are substrings the runtime uses in its out-of-memory error
// messages across providers.
var oomFragments = []string{
	"out of memory",
	"cuda_out_of_memory",
	"cudaErrorMemoryAllocation",
	"failed to allocate",
}

// IsOOM reports whether err looks like an accelerator out-of-memory
// condition.
func IsOOM(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range oomFragments {
		if strings.Contains(msg, strings.ToLower(frag)) {
			return true
		}
	}
	return false
}

// ErrNotInitialized is returned by session constructors used before [Init].
var ErrNotInitialized = errors.New("accel: onnxruntime environment not initialized")
