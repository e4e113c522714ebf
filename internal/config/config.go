package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	OutputDir string `yaml:"output_dir"`
	TempDir   string `yaml:"temp_dir"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Encoder settings
	Encoder EncoderConfig `yaml:"encoder"`

	// Asset loading limits
	Limits LimitsConfig `yaml:"limits"`

	// Font settings
	Fonts FontConfig `yaml:"fonts"`

	// Frame scheduler settings
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
}

type EncoderConfig struct {
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
	PixFmt     string `yaml:"pix_fmt"`
}

type LimitsConfig struct {
	MaxAudioBytes  int64 `yaml:"max_audio_bytes"`
	MaxImageBytes  int64 `yaml:"max_image_bytes"`
	AssetTimeoutMS int   `yaml:"asset_timeout_ms"`
}

// AssetTimeout returns the asset loading timeout as a duration.
func (l LimitsConfig) AssetTimeout() time.Duration {
	return time.Duration(l.AssetTimeoutMS) * time.Millisecond
}

// FontConfig maps the three font choices to TTF files. Empty entries fall
// back to the embedded Go fonts.
type FontConfig struct {
	FontA string `yaml:"font_a"`
	FontB string `yaml:"font_b"`
	FontC string `yaml:"font_c"`
}

type SchedulerConfig struct {
	FPS             float64 `yaml:"fps"`
	Realtime        bool    `yaml:"realtime"`
	FinalizeGraceMS int     `yaml:"finalize_grace_ms"`
}

// FinalizeGrace returns the pre-finalize grace delay as a duration.
func (s SchedulerConfig) FinalizeGrace() time.Duration {
	return time.Duration(s.FinalizeGraceMS) * time.Millisecond
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		OutputDir: "./out",
		TempDir:   os.TempDir(),
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			Preset:     "medium",
			CRF:        23,
		},
		Encoder: EncoderConfig{
			VideoCodec: "libx264",
			AudioCodec: "aac",
			PixFmt:     "yuv420p",
		},
		Limits: LimitsConfig{
			MaxAudioBytes:  20 << 20,
			MaxImageBytes:  10 << 20,
			AssetTimeoutMS: 30000,
		},
		Scheduler: SchedulerConfig{
			FPS:             30,
			Realtime:        false,
			FinalizeGraceMS: 500,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./lyricsmith.yaml",
		"./lyricsmith.yml",
		filepath.Join(os.Getenv("HOME"), ".lyricsmith", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
