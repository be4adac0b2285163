package assets

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestModelDir_FlagWins(t *testing.T) {
	t.Setenv(modelDirEnv, "/env/models")

	got, err := ModelDir("/flag/models")
	if err != nil {
		t.Fatalf("ModelDir: %v", err)
	}
	if got != "/flag/models" {
		t.Errorf("got %q, want the flag value", got)
	}
}

func TestModelDir_EnvOverridesDefault(t *testing.T) {
	t.Setenv(modelDirEnv, "/env/models")

	got, err := ModelDir("")
	if err != nil {
		t.Fatalf("ModelDir: %v", err)
	}
	if got != "/env/models" {
		t.Errorf("got %q, want the env value", got)
	}
}

func TestModelDir_LinuxDefault(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-specific layout")
	}
	t.Setenv(modelDirEnv, "")
	t.Setenv("XDG_DATA_HOME", "/data")

	got, err := ModelDir("")
	if err != nil {
		t.Fatalf("ModelDir: %v", err)
	}
	if want := filepath.Join("/data", "kotoba", "models"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
