package eyemouse

import (
	"errors"
	"testing"
	"time"

	"github.com/teslashibe/go-eyemouse/pkg/input"
	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Sink != input.KindDesktop {
		t.Errorf("Sink = %q, want desktop", cfg.Sink)
	}
	if cfg.Tracking.FrameSkip != 5 {
		t.Errorf("FrameSkip = %d, want 5", cfg.Tracking.FrameSkip)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"unknown sink", func(c *Config) { c.Sink = "joystick" }, "Sink"},
		{"remote without agent", func(c *Config) { c.Sink = input.KindRemote }, "AgentAddr"},
		{"log without screen", func(c *Config) { c.Sink = input.KindLog; c.LogScreenWidth = 0 }, "LogScreen"},
		{"negative stream fps", func(c *Config) { c.StreamFPS = -1 }, "StreamFPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			var cfgErr *ConfigError
			if err := cfg.Validate(); !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestValidate_NestedConfigs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracking.FrameSkip = 0
	cfg.Camera.Width = 10

	err := cfg.Validate()
	if !errors.Is(err, tracking.ErrInvalidConfig) {
		t.Errorf("Expected tracking.ErrInvalidConfig in %v", err)
	}
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("EYEMOUSE_PRESET", "sensitive")
	t.Setenv("EYEMOUSE_DWELL", "750ms")
	t.Setenv("EYEMOUSE_SINK", "remote")
	t.Setenv("EYEMOUSE_AGENT", "10.0.0.5:8091")
	t.Setenv("EYEMOUSE_FRAME_SKIP", "not-a-number")

	cfg := DefaultConfig()
	if err := cfg.LoadEnvConfig(); err != nil {
		t.Fatalf("LoadEnvConfig: %v", err)
	}

	want := tracking.SensitiveConfig()
	if cfg.Tracking.EARThreshold != want.EARThreshold {
		t.Errorf("EARThreshold = %v, want sensitive preset %v", cfg.Tracking.EARThreshold, want.EARThreshold)
	}
	if cfg.Tracking.DwellThreshold != 750*time.Millisecond {
		t.Errorf("DwellThreshold = %v, want 750ms", cfg.Tracking.DwellThreshold)
	}
	if cfg.Tracking.FrameSkip != want.FrameSkip {
		t.Errorf("Invalid FRAME_SKIP should keep %d, got %d", want.FrameSkip, cfg.Tracking.FrameSkip)
	}
	if cfg.Sink != input.KindRemote || cfg.AgentAddr != "10.0.0.5:8091" {
		t.Errorf("Sink = %q @ %q", cfg.Sink, cfg.AgentAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Env config should validate: %v", err)
	}
}

func TestLoadEnvConfig_UnknownPreset(t *testing.T) {
	t.Setenv("EYEMOUSE_PRESET", "turbo")

	cfg := DefaultConfig()
	if err := cfg.LoadEnvConfig(); !errors.Is(err, tracking.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sink = ""
	if _, err := New(cfg); err == nil {
		t.Error("New should reject an invalid config")
	}
}

func TestRun_BeforeInit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sink = input.KindLog
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := app.Run(t.Context()); err == nil {
		t.Error("Run before Init should fail")
	}
	app.Shutdown()
}
