package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keagan/lyricsmith/internal/config"
	"github.com/keagan/lyricsmith/internal/media"
)

// Bundle holds every asset one export needs, loaded and decoded up front.
// All fields are immutable for the duration of the export.
type Bundle struct {
	Image     image.Image
	Audio     *media.Source
	AudioInfo *media.AudioInfo
	Disc      image.Image // static vinyl overlay graphic
}

// Loader decodes and validates export assets under the configured ceilings.
type Loader struct {
	logger zerolog.Logger
	exec   *media.Executor
	limits config.LimitsConfig
}

// NewLoader creates an asset loader.
func NewLoader(logger zerolog.Logger, exec *media.Executor, limits config.LimitsConfig) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "assets").Logger(),
		exec:   exec,
		limits: limits,
	}
}

// Load fetches the image and audio concurrently, plus the disc overlay when
// requested. The first failure wins; the context bounds the whole phase.
func (l *Loader) Load(ctx context.Context, audioPath, imagePath string, withDisc bool) (*Bundle, error) {
	bundle := &Bundle{}

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		img, err := l.LoadImage(imagePath)
		if err != nil {
			errs <- err
			return
		}
		bundle.Image = img
	}()
	go func() {
		defer wg.Done()
		src, info, err := l.LoadAudio(ctx, audioPath)
		if err != nil {
			errs <- err
			return
		}
		bundle.Audio = src
		bundle.AudioInfo = info
	}()
	wg.Wait()

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("asset loading interrupted: %w", err)
	}

	if withDisc {
		bundle.Disc = DiscOverlay(discDiameter(bundle.Image))
	}

	l.logger.Debug().
		Str("audio", audioPath).
		Str("image", imagePath).
		Dur("duration", bundle.AudioInfo.Duration).
		Msg("assets loaded")

	return bundle, nil
}

// LoadImage decodes a raster image, enforcing the size ceiling.
func (l *Loader) LoadImage(path string) (image.Image, error) {
	if err := l.checkSize(path, l.limits.MaxImageBytes); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	l.logger.Debug().Str("path", path).Str("format", format).Msg("image decoded")
	return img, nil
}

// LoadAudio probes and fully decodes the audio track to an analysis-ready
// source, enforcing the size ceiling.
func (l *Loader) LoadAudio(ctx context.Context, path string) (*media.Source, *media.AudioInfo, error) {
	if err := l.checkSize(path, l.limits.MaxAudioBytes); err != nil {
		return nil, nil, err
	}

	info, err := l.exec.ProbeAudio(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("probing audio %s: %w", path, err)
	}

	pcm, err := l.exec.DecodePCM(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if len(pcm) == 0 {
		return nil, nil, fmt.Errorf("audio %s decoded to zero samples", path)
	}

	return media.NewSource(pcm, media.DecodeRate), info, nil
}

func (l *Loader) checkSize(path string, ceiling int64) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	if ceiling > 0 && fi.Size() > ceiling {
		return fmt.Errorf("%s is %d bytes, exceeds the %d byte limit", path, fi.Size(), ceiling)
	}
	return nil
}

func discDiameter(img image.Image) int {
	if img == nil {
		return 400
	}
	d := img.Bounds().Dy() / 2
	if d < 200 {
		d = 200
	}
	return d
}
