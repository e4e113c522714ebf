package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/lyricsmith/internal/assets"
	"github.com/keagan/lyricsmith/internal/media"
	"github.com/keagan/lyricsmith/internal/render"
	"github.com/keagan/lyricsmith/internal/spectrum"
	"github.com/keagan/lyricsmith/internal/timeline"
)

// FrameSink consumes composited frames in presentation order and either
// finalizes (Close) or discards (Abort) the output.
type FrameSink interface {
	WriteFrame(pix []byte) error
	Close() error
	Abort()
	Output() string
}

// scheduler drives the render loop: one tick per output frame, elapsed time
// derived from the frame index so frames reach the sink in strictly
// non-decreasing order. In realtime mode ticks are paced to wall-clock for
// sinks that capture live.
type scheduler struct {
	logger   zerolog.Logger
	fps      float64
	realtime bool

	canvas *image.RGBA
	fonts  *render.FontSet
	style  render.Config

	title   string
	creator string
}

// run renders every frame of the export. It returns the frame count on
// success; on cancellation it stops between frames without touching the
// sink's lifecycle (the pipeline owns teardown).
func (s *scheduler) run(
	ctx context.Context,
	bundle *assets.Bundle,
	analyzer *spectrum.Analyzer,
	tl *timeline.Timeline,
	sink FrameSink,
	progress func(elapsed, duration float64),
) (int, error) {
	duration := bundle.Audio.Duration()
	total := int(math.Ceil(duration * s.fps))
	if total <= 0 {
		return 0, fmt.Errorf("nothing to render: duration %.3fs", duration)
	}

	s.logger.Info().
		Int("frames", total).
		Float64("duration", duration).
		Float64("fps", s.fps).
		Bool("realtime", s.realtime).
		Msg("render loop starting")

	var ticker *time.Ticker
	if s.realtime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) / s.fps))
		defer ticker.Stop()
	}

	in := render.Inputs{
		Backdrop: render.Backdrop(s.style.Aspect, bundle.Image),
		Disc:     bundle.Disc,
		Title:    s.title,
		Creator:  s.creator,
	}

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if s.realtime && i > 0 {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return i, ctx.Err()
			}
		}

		elapsed := float64(i) / s.fps
		bundle.Audio.Seek(elapsed)

		in.Elapsed = elapsed
		in.Spectrum = analyzer.Sample()
		in.Lyric, in.HasLyric = tl.ActiveAt(elapsed)

		if err := render.Compose(s.canvas, in, s.style, s.fonts); err != nil {
			return i, fmt.Errorf("compositing frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(s.canvas.Pix); err != nil {
			return i, fmt.Errorf("frame %d: %w", i, err)
		}

		progress(elapsed, duration)
	}

	bundle.Audio.Seek(duration)
	s.logger.Debug().Int("frames", total).Msg("render loop finished")
	return total, nil
}

// encodeOptions assembles the sink options for this scheduler's geometry.
func (s *scheduler) encodeOptions(audioPath, output string, enc encoderSettings) media.EncodeOptions {
	w, h := s.style.Aspect.Dimensions()
	return media.EncodeOptions{
		AudioPath:  audioPath,
		Output:     output,
		Width:      w,
		Height:     h,
		FPS:        s.fps,
		VideoCodec: enc.videoCodec,
		AudioCodec: enc.audioCodec,
		PixFmt:     enc.pixFmt,
		Preset:     enc.preset,
		CRF:        enc.crf,
	}
}

type encoderSettings struct {
	videoCodec string
	audioCodec string
	pixFmt     string
	preset     string
	crf        int
}
