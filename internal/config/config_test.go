package config

import (
	"strings"
	"testing"
	"time"

	"github.com/kotobatl/kotoba/internal/accel"
)

func TestDefault_PerVariant(t *testing.T) {
	mt := Default(VariantMT)
	if mt.Port != 50051 {
		t.Errorf("mt port = %d, want 50051", mt.Port)
	}
	ocr := Default(VariantOCR)
	if ocr.Port != 50052 {
		t.Errorf("ocr port = %d, want 50052", ocr.Port)
	}

	if mt.Host != "127.0.0.1" {
		t.Errorf("host = %q, want loopback", mt.Host)
	}
	if mt.Device != accel.DeviceAuto {
		t.Errorf("device = %q, want auto", mt.Device)
	}
	if mt.ComputeType != "int8" {
		t.Errorf("compute type = %q, want int8", mt.ComputeType)
	}
	if mt.ShutdownGrace != 5*time.Second {
		t.Errorf("shutdown grace = %s", mt.ShutdownGrace)
	}
}

func TestValidate(t *testing.T) {
	valid := Default(VariantMT)
	if err := Validate(&valid); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "port"},
		{"bad device", func(c *Config) { c.Device = "metal" }, "device"},
		{"bad compute type", func(c *Config) { c.ComputeType = "int4" }, "compute_type"},
		{"zero grace", func(c *Config) { c.ShutdownGrace = 0 }, "shutdown_grace"},
		{"negative grace", func(c *Config) { c.ShutdownGrace = -time.Second }, "shutdown_grace"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default(VariantMT)
			tc.mutate(&cfg)
			err := Validate(&cfg)
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should name %q", err, tc.want)
			}
		})
	}
}
