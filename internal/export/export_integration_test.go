package export_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keagan/lyricsmith/internal/config"
	"github.com/keagan/lyricsmith/internal/export"
	"github.com/keagan/lyricsmith/internal/media"
	"github.com/keagan/lyricsmith/internal/render"
	"github.com/keagan/lyricsmith/internal/timeline"
)

// local helper (cannot use unexported ones from export package)
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func writeTone(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "tone.wav")
	cmd := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=440:sample_rate=44100:duration=1",
		path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("generating tone: %v\n%s", err, out)
	}
	return path
}

func writeArt(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 160, A: 255})
		}
	}

	path := filepath.Join(dir, "art.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIntegration_ExportEndToEnd(t *testing.T) {
	skipIfNoFFmpeg(t)
	if testing.Short() {
		t.Skip("end to end export skipped in short mode")
	}

	dir := t.TempDir()
	audio := writeTone(t, dir)
	art := writeArt(t, dir)
	output := filepath.Join(dir, "out.mp4")

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.FFmpeg.Preset = "ultrafast"

	pipe, err := export.New(logger, cfg)
	if err != nil {
		t.Fatalf("export.New: %v", err)
	}

	var last float64
	res, err := pipe.Export(context.Background(), export.Request{
		AudioPath: audio,
		ImagePath: art,
		Timeline: timeline.New([]timeline.Line{
			{Text: "first line", Start: 0},
			{Text: "second line", Start: 0.5},
		}),
		Title:   "Integration",
		Creator: "Tester",
		Style: render.Config{
			Style:  render.StyleClassic,
			Aspect: render.Aspect16x9,
			Font:   render.FontA,
			Palette: []color.NRGBA{
				{R: 255, G: 0, B: 102, A: 255},
				{R: 0, G: 255, B: 204, A: 255},
			},
		},
		Output:     output,
		OnProgress: func(p float64) { last = p },
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if last != 1.0 {
		t.Errorf("final progress = %v, want 1.0", last)
	}
	if res.Frames != 30 {
		t.Errorf("frames = %d, want 30 for 1s at 30 fps", res.Frames)
	}

	// probe the artifact: one video + one audio stream, duration ~1s
	mediaExec, err := media.New(logger, "", "", 0)
	if err != nil {
		t.Fatalf("media.New: %v", err)
	}
	info, err := mediaExec.ProbeAudio(context.Background(), output)
	if err != nil {
		t.Fatalf("probing artifact: %v", err)
	}
	if d := info.Duration.Seconds(); math.Abs(d-1.0) > 0.2 {
		t.Errorf("artifact duration = %vs, want ~1.0s", d)
	}
}
