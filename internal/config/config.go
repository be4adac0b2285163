// Package config provides the startup configuration schema for the Kotoba
// servers: CLI flags, an optional YAML file mirroring them, and validation.
//
// Precedence, lowest to highest: built-in defaults, YAML file, flags given
// on the command line. Configuration is resolved once at startup; nothing is
// reloaded at runtime.
package config

import (
	"fmt"
	"time"

	"github.com/kotobatl/kotoba/internal/accel"
)

// Variant selects the engine family a binary serves.
type Variant string

const (
	VariantMT  Variant = "mt"
	VariantOCR Variant = "ocr"
)

// Default ports per variant.
const (
	defaultPortMT  = 50051
	defaultPortOCR = 50052
)

// defaultShutdownGrace bounds how long in-flight calls may run after a
// terminate signal.
const defaultShutdownGrace = 5 * time.Second

// Config is the resolved startup configuration for one server process.
type Config struct {
	// Host is the bind address. The sidecar serves a local host process, so
	// the default stays on loopback.
	Host string `yaml:"host"`

	// Port is the gRPC listen port.
	Port int `yaml:"port"`

	// ModelPath is the model directory. Empty means resolve via the
	// environment override or the platform user-data location.
	ModelPath string `yaml:"model_path"`

	// Device selects the execution provider: auto, cpu or cuda.
	Device accel.Device `yaml:"device"`

	// ComputeType selects the quantization variant of the weights.
	ComputeType string `yaml:"compute_type"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`

	// DebugAddr, when set, serves /healthz, /readyz and /metrics over HTTP.
	DebugAddr string `yaml:"debug_addr"`

	// HubURL is the model hub root for provisioning missing bundles. Empty
	// disables downloads.
	HubURL string `yaml:"hub_url"`

	// OnnxLibPath points at the ONNX Runtime shared library. Empty uses the
	// binding's platform default.
	OnnxLibPath string `yaml:"onnx_lib_path"`

	// ShutdownGrace bounds in-flight calls during graceful shutdown.
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// Default returns the built-in configuration for a variant.
func Default(variant Variant) Config {
	port := defaultPortMT
	if variant == VariantOCR {
		port = defaultPortOCR
	}
	return Config{
		Host:          "127.0.0.1",
		Port:          port,
		Device:        accel.DeviceAuto,
		ComputeType:   "int8",
		ShutdownGrace: defaultShutdownGrace,
	}
}

// validComputeTypes are the quantization variants the model bundles ship in.
var validComputeTypes = []string{"int8", "float16", "float32"}

// Validate checks that cfg contains a coherent set of values. It returns an
// error naming the first invalid field.
func Validate(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("config: port %d is out of range [1, 65535]", cfg.Port)
	}
	if !cfg.Device.IsValid() {
		return fmt.Errorf("config: device %q is invalid; valid values: auto, cpu, cuda", cfg.Device)
	}
	ok := false
	for _, ct := range validComputeTypes {
		if cfg.ComputeType == ct {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("config: compute_type %q is invalid; valid values: int8, float16, float32", cfg.ComputeType)
	}
	if cfg.ShutdownGrace <= 0 {
		return fmt.Errorf("config: shutdown_grace must be positive, got %s", cfg.ShutdownGrace)
	}
	return nil
}
