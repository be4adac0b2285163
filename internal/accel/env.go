// Package accel owns everything that touches the ONNX Runtime process-wide
// state: dynamic-library path hygiene, environment initialization, the
// accelerator probe, per-session options, and explicit memory reclamation.
//
// The ordering contract matters: [SanitizeEnv] must run before the runtime
// library is first touched, so that no dynamic-library search can reach a
// competing accelerator runtime shipped by another toolchain on the same
// machine. The server runtime enforces this during bootstrap.
package accel

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// conflictMarkers identifies directories belonging to toolchain installations
// known to bundle their own CUDA/cuDNN builds. Loading their copies alongside
// the runtime's own is the classic "works on one machine, crashes on the
// next" failure.
var conflictMarkers = []string{
	"torch" + string(os.PathSeparator) + "lib",
	"tensorflow",
	"nvidia" + string(os.PathSeparator) + "cudnn",
	"anaconda",
	"miniconda",
	"condabin",
}

// libraryPathVars lists the environment variables that feed the dynamic
// linker's search path per platform. Sanitizing all of them is harmless on
// platforms where a variable is unused.
var libraryPathVars = []string{"PATH", "LD_LIBRARY_PATH", "DYLD_LIBRARY_PATH"}

// SanitizeEnv removes directories belonging to competing toolchain
// installations from the dynamic-library search path and returns the removed
// entries. One log line is emitted per removal.
func SanitizeEnv() []string {
	var removed []string
	for _, name := range libraryPathVars {
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			continue
		}
		kept, dropped := splitConflicting(val)
		if len(dropped) == 0 {
			continue
		}
		os.Setenv(name, kept)
		for _, dir := range dropped {
			slog.Warn("removed conflicting runtime directory from library search path",
				"variable", name, "dir", dir)
		}
		removed = append(removed, dropped...)
	}
	return removed
}

// splitConflicting partitions a list-separated path value into the entries to
// keep (rejoined) and the entries matching a conflict marker.
func splitConflicting(val string) (kept string, dropped []string) {
	entries := filepath.SplitList(val)
	keep := entries[:0]
	for _, dir := range entries {
		if isConflicting(dir) {
			dropped = append(dropped, dir)
			continue
		}
		keep = append(keep, dir)
	}
	return strings.Join(keep, string(os.PathListSeparator)), dropped
}

func isConflicting(dir string) bool {
	lower := strings.ToLower(dir)
	for _, marker := range conflictMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
