package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kotobatl/kotoba/internal/accel"
)

// Parse resolves the configuration for one server process from args
// (excluding the program name). Flags mirror the YAML schema; a flag given
// explicitly on the command line wins over the file value.
func Parse(variant Variant, args []string) (*Config, error) {
	defaults := Default(variant)

	fs := flag.NewFlagSet("kotoba-"+string(variant), flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to a YAML configuration file")

		host        = fs.String("host", defaults.Host, "bind address for the gRPC server")
		port        = fs.Int("port", defaults.Port, "listen port for the gRPC server")
		modelPath   = fs.String("model-path", "", "model directory (default: $KOTOBA_MODEL_DIR or the user data dir)")
		device      = fs.String("device", string(defaults.Device), "execution provider: auto, cpu or cuda")
		computeType = fs.String("compute-type", defaults.ComputeType, "weight quantization variant: int8, float16 or float32")
		debug       = fs.Bool("debug", false, "enable debug logging")
		debugAddr   = fs.String("debug-addr", "", "serve /healthz, /readyz and /metrics on this address (off when empty)")
		hubURL      = fs.String("hub-url", "", "model hub root URL for downloading missing bundles")
		onnxLib     = fs.String("onnx-lib", "", "path to the ONNX Runtime shared library")
		grace       = fs.Duration("shutdown-grace", defaults.ShutdownGrace, "grace period for in-flight calls on shutdown")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := defaults
	if *configPath != "" {
		if err := loadFile(*configPath, &cfg); err != nil {
			return nil, err
		}
	}

	// Flags given explicitly override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "model-path":
			cfg.ModelPath = *modelPath
		case "device":
			cfg.Device = accel.Device(*device)
		case "compute-type":
			cfg.ComputeType = *computeType
		case "debug":
			cfg.Debug = *debug
		case "debug-addr":
			cfg.DebugAddr = *debugAddr
		case "hub-url":
			cfg.HubURL = *hubURL
		case "onnx-lib":
			cfg.OnnxLibPath = *onnxLib
		case "shutdown-grace":
			cfg.ShutdownGrace = *grace
		}
	})
	normalize(&cfg, defaults)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFile merges the YAML file at path over cfg.
func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	if err := loadReader(f, cfg); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

// loadReader decodes a YAML config from r over cfg. Useful in tests where
// configs are constructed from string literals.
func loadReader(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// normalize restores defaults a YAML file may have blanked by mentioning a
// key with an empty value.
func normalize(cfg *Config, defaults Config) {
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.Device == "" {
		cfg.Device = defaults.Device
	}
	if cfg.ComputeType == "" {
		cfg.ComputeType = defaults.ComputeType
	}
	if cfg.ShutdownGrace == 0 {
		cfg.ShutdownGrace = defaults.ShutdownGrace
	}
}
