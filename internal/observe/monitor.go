package observe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/shirou/gopsutil/v4/process"
)

// Monitor cadence and alert thresholds. Alerts are log events, never wire
// errors.
const (
	defaultInterval = 5 * time.Minute

	vramCriticalRatio   = 0.90
	handleCriticalCount = 10_000
	rssWarnBytes        = 1 << 30
)

// Sample is one point-in-time reading of process and accelerator resources.
// Only the most recent sample is retained; history lives in the log stream.
type Sample struct {
	Time time.Time

	// RSS and VMS are the process resident and virtual set sizes in bytes.
	RSS, VMS uint64

	// Handles is the OS handle / file-descriptor count, 0 on platforms that
	// do not expose it.
	Handles int32

	// Threads is the process thread count.
	Threads int32

	// VRAMUsed and VRAMTotal are per-device accelerator memory in bytes,
	// both 0 when no accelerator metrics are available.
	VRAMUsed, VRAMTotal uint64
}

// procStats reads process-side numbers; gpuStats reads accelerator memory.
// Both are replaceable for tests.
type procStats func() (rss, vms uint64, handles, threads int32, err error)
type gpuStats func() (used, total uint64, err error)

// Monitor samples process RAM, VRAM, handle and thread counts on a fixed
// cadence, logs one line per sample, and raises leak alerts. It is one
// cooperative task: started after engines load, cancelled with a bounded
// join on shutdown.
type Monitor struct {
	interval time.Duration

	readProc procStats
	readGPU  gpuStats // nil when accelerator metrics are unavailable

	nvmlOwned bool

	last atomic.Pointer[Sample]

	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewMonitor builds a monitor for the current process. When the accelerator
// metrics library cannot initialize, the monitor still runs for CPU-side
// metrics and logs one warning; it never aborts the server.
func NewMonitor(interval time.Duration) (*Monitor, error) {
	if interval <= 0 {
		interval = defaultInterval
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("observe: open own process: %w", err)
	}

	m := &Monitor{
		interval: interval,
		readProc: func() (uint64, uint64, int32, int32, error) {
			mi, err := proc.MemoryInfo()
			if err != nil {
				return 0, 0, 0, 0, err
			}
			// Handle count is best-effort; 0 on platforms without support.
			handles, err := proc.NumFDs()
			if err != nil {
				handles = 0
			}
			threads, err := proc.NumThreads()
			if err != nil {
				threads = 0
			}
			return mi.RSS, mi.VMS, handles, threads, nil
		},
		done: make(chan struct{}),
	}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		slog.Warn("accelerator metrics unavailable, monitoring CPU-side only",
			"reason", nvml.ErrorString(ret))
		return m, nil
	}
	dev, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		slog.Warn("accelerator metrics unavailable, monitoring CPU-side only",
			"reason", nvml.ErrorString(ret))
		nvml.Shutdown()
		return m, nil
	}
	m.nvmlOwned = true
	m.readGPU = func() (uint64, uint64, error) {
		info, ret := dev.GetMemoryInfo()
		if ret != nvml.SUCCESS {
			return 0, 0, fmt.Errorf("nvml memory info: %s", nvml.ErrorString(ret))
		}
		return info.Used, info.Total, nil
	}
	return m, nil
}

// Start launches the sampling loop. The first sample is taken immediately.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.sample()
			ticker := time.NewTicker(m.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					m.sample()
				case <-m.done:
					return
				}
			}
		}()
	})
}

// Stop cancels the loop, joins it within ctx's deadline, and tears down the
// accelerator metrics library.
func (m *Monitor) Stop(ctx context.Context) error {
	var err error
	m.stopOnce.Do(func() {
		close(m.done)

		joined := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(joined)
		}()
		select {
		case <-joined:
		case <-ctx.Done():
			err = fmt.Errorf("observe: monitor join: %w", ctx.Err())
		}

		if m.nvmlOwned {
			nvml.Shutdown()
		}
	})
	return err
}

// Last returns the most recent sample, or nil before the first one.
func (m *Monitor) Last() *Sample { return m.last.Load() }

// VRAMUtilization returns used/total from the last sample, or a negative
// value when unknown. The batch aggregator sizes batches off this.
func (m *Monitor) VRAMUtilization() float64 {
	s := m.last.Load()
	if s == nil || s.VRAMTotal == 0 {
		return -1
	}
	return float64(s.VRAMUsed) / float64(s.VRAMTotal)
}

// sample takes one reading, stores it, logs one line, and evaluates the
// alert rules. Exactly one critical line per rule per sample, not per call.
func (m *Monitor) sample() {
	s := Sample{Time: time.Now()}

	rss, vms, handles, threads, err := m.readProc()
	if err != nil {
		slog.Warn("resource sample failed", "err", err)
		return
	}
	s.RSS, s.VMS, s.Handles, s.Threads = rss, vms, handles, threads

	if m.readGPU != nil {
		used, total, err := m.readGPU()
		if err != nil {
			slog.Warn("accelerator memory sample failed", "err", err)
		} else {
			s.VRAMUsed, s.VRAMTotal = used, total
		}
	}

	m.last.Store(&s)

	slog.Info("resource sample",
		"rss_mib", s.RSS>>20,
		"vms_mib", s.VMS>>20,
		"handles", s.Handles,
		"threads", s.Threads,
		"vram_used_mib", s.VRAMUsed>>20,
		"vram_total_mib", s.VRAMTotal>>20,
	)

	if s.VRAMTotal > 0 {
		if ratio := float64(s.VRAMUsed) / float64(s.VRAMTotal); ratio > vramCriticalRatio {
			slog.Error("critical: VRAM utilization above threshold, potential leak",
				"utilization", fmt.Sprintf("%.1f%%", ratio*100))
		}
	}
	if s.Handles > handleCriticalCount {
		slog.Error("critical: OS handle count above threshold, potential handle leak",
			"handles", s.Handles)
	}
	if s.RSS > rssWarnBytes {
		slog.Warn("RSS above 1 GiB, observing", "rss_mib", s.RSS>>20)
	}
}
