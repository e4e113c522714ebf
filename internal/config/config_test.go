package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.FFmpeg.BinaryPath != "ffmpeg" {
		t.Errorf("ffmpeg binary = %q", cfg.FFmpeg.BinaryPath)
	}
	if cfg.Encoder.VideoCodec != "libx264" {
		t.Errorf("video codec = %q", cfg.Encoder.VideoCodec)
	}
	if cfg.Scheduler.FPS != 30 {
		t.Errorf("fps = %v, want 30", cfg.Scheduler.FPS)
	}
	if cfg.Scheduler.Realtime {
		t.Error("realtime enabled by default")
	}
	if got := cfg.Limits.MaxAudioBytes; got != 20<<20 {
		t.Errorf("max audio bytes = %d", got)
	}
	if got := cfg.Limits.MaxImageBytes; got != 10<<20 {
		t.Errorf("max image bytes = %d", got)
	}
	if got := cfg.Limits.AssetTimeout(); got != 30*time.Second {
		t.Errorf("asset timeout = %v", got)
	}
	if got := cfg.Scheduler.FinalizeGrace(); got != 500*time.Millisecond {
		t.Errorf("finalize grace = %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
ffmpeg:
  preset: slow
  crf: 18
scheduler:
  fps: 60
  realtime: true
  finalize_grace_ms: 250
limits:
  max_audio_bytes: 1048576
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.FFmpeg.Preset != "slow" || cfg.FFmpeg.CRF != 18 {
		t.Errorf("ffmpeg overrides not applied: %+v", cfg.FFmpeg)
	}
	if cfg.Scheduler.FPS != 60 || !cfg.Scheduler.Realtime {
		t.Errorf("scheduler overrides not applied: %+v", cfg.Scheduler)
	}
	if got := cfg.Scheduler.FinalizeGrace(); got != 250*time.Millisecond {
		t.Errorf("finalize grace = %v", got)
	}
	if cfg.Limits.MaxAudioBytes != 1<<20 {
		t.Errorf("max audio bytes = %d", cfg.Limits.MaxAudioBytes)
	}
	// untouched keys keep their defaults
	if cfg.Encoder.VideoCodec != "libx264" {
		t.Errorf("video codec = %q after partial override", cfg.Encoder.VideoCodec)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, _ := Load(path)
	cfg.FFmpeg.CRF = 20
	cfg.Scheduler.FPS = 24
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got.FFmpeg.CRF != 20 || got.Scheduler.FPS != 24 {
		t.Errorf("round trip lost values: crf=%d fps=%v", got.FFmpeg.CRF, got.Scheduler.FPS)
	}
}

func TestContextAccessor(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	ctx := WithConfig(context.Background(), cfg)

	if got := FromContext(ctx); got != cfg {
		t.Error("FromContext did not return the stored config")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext without a stored config should fall back to defaults")
	}
}
