package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/lyricsmith/internal/assets"
	"github.com/keagan/lyricsmith/internal/config"
	"github.com/keagan/lyricsmith/internal/media"
	"github.com/keagan/lyricsmith/internal/render"
	"github.com/keagan/lyricsmith/internal/spectrum"
	"github.com/keagan/lyricsmith/internal/timeline"
	"github.com/keagan/lyricsmith/pkg/util"
)

// State is the pipeline's export lifecycle position.
type State int

const (
	StateIdle State = iota
	StateLoadingAssets
	StateEncoding
	StateFinalizing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingAssets:
		return "loading_assets"
	case StateEncoding:
		return "encoding"
	case StateFinalizing:
		return "finalizing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// busy reports whether an export is in flight in this state.
func (s State) busy() bool {
	return s == StateLoadingAssets || s == StateEncoding || s == StateFinalizing
}

// Request describes one export.
type Request struct {
	AudioPath string
	ImagePath string
	Timeline  *timeline.Timeline
	Title     string
	Creator   string
	Style     render.Config
	Output    string
	// OnProgress receives values in [0, 1]; calls are monotonically
	// non-decreasing and a successful export ends on exactly 1.0.
	OnProgress ProgressFunc
}

// Result is the artifact of a completed export.
type Result struct {
	OutputPath string
	Duration   time.Duration
	Frames     int
}

type (
	loadFunc  func(ctx context.Context, audioPath, imagePath string, withDisc bool) (*assets.Bundle, error)
	startFunc func(ctx context.Context, opts media.EncodeOptions) (FrameSink, error)
	checkFunc func(ctx context.Context) error
)

// Pipeline runs exports one at a time: asset loading, encoder lifecycle,
// the frame render loop, and teardown. A second Export while one is in
// flight is rejected outright, never queued. Independent Pipeline instances
// own independent resources and may export concurrently.
type Pipeline struct {
	logger zerolog.Logger
	cfg    *config.Config
	fonts  *render.FontSet

	load  loadFunc
	start startFunc
	check checkFunc

	mu    sync.Mutex
	state State
}

// New creates an export pipeline. A missing ffmpeg/ffprobe install is a
// capability failure.
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	exec, err := media.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, classify(KindCapability, "locating ffmpeg", err)
	}

	fonts, err := render.LoadFonts(cfg.Fonts.FontA, cfg.Fonts.FontB, cfg.Fonts.FontC)
	if err != nil {
		return nil, classify(KindAssetLoad, "loading fonts", err)
	}

	loader := assets.NewLoader(logger, exec, cfg.Limits)

	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		cfg:    cfg,
		fonts:  fonts,
		load:   loader.Load,
		start: func(ctx context.Context, opts media.EncodeOptions) (FrameSink, error) {
			return exec.StartEncode(ctx, opts)
		},
		check: func(ctx context.Context) error {
			for _, codec := range []string{cfg.Encoder.VideoCodec, cfg.Encoder.AudioCodec} {
				if !exec.SupportsEncoder(ctx, codec) {
					return fmt.Errorf("ffmpeg build does not support encoder %q", codec)
				}
			}
			return nil
		},
	}, nil
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.busy() {
		return ErrExportInFlight
	}
	p.state = StateLoadingAssets
	return nil
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.logger.Debug().Stringer("state", s).Msg("state transition")
}

// Export runs one full export to completion, failure or cancellation.
func (p *Pipeline) Export(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := p.begin(); err != nil {
		return nil, err
	}

	res, err := p.run(ctx, req)
	if err != nil {
		p.setState(StateFailed)
		p.logger.Error().Err(err).Msg("export failed")
		return nil, err
	}

	p.setState(StateCompleted)
	p.logger.Info().
		Str("output", res.OutputPath).
		Dur("duration", res.Duration).
		Int("frames", res.Frames).
		Msg("export completed")
	return res, nil
}

func validateRequest(req Request) error {
	if req.AudioPath == "" {
		return fmt.Errorf("audio path is required")
	}
	if req.ImagePath == "" {
		return fmt.Errorf("image path is required")
	}
	if req.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if req.Timeline == nil {
		return fmt.Errorf("timeline is required (may be empty)")
	}
	return req.Style.Validate()
}

func (p *Pipeline) run(ctx context.Context, req Request) (*Result, error) {
	prog := newTracker(req.OnProgress)
	prog.report(0)

	// LoadingAssets: image, audio and overlay fetched concurrently under
	// the configured timeout.
	p.logger.Info().
		Str("audio", req.AudioPath).
		Str("image", req.ImagePath).
		Stringer("style", req.Style.Style).
		Msg("loading assets")

	loadCtx, cancel := context.WithTimeout(ctx, p.cfg.Limits.AssetTimeout())
	bundle, err := p.load(loadCtx, req.AudioPath, req.ImagePath, req.Style.Style == render.StyleVinyl)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return nil, classify(KindAssetLoad, "loading assets", err)
	}

	if bundle.Audio.Duration() <= 0 {
		return nil, classify(KindPlayback, "validating audio", fmt.Errorf("audio stream has no duration"))
	}

	// capability gate: checked before any playback or encoding starts
	if err := p.check(ctx); err != nil {
		return nil, classify(KindCapability, "checking encoder support", err)
	}

	analyzer, err := spectrum.New(bundle.Audio, spectrum.DefaultOptions())
	if err != nil {
		return nil, classify(KindEncoding, "building analyzer", err)
	}

	sched := &scheduler{
		logger:   p.logger,
		fps:      p.cfg.Scheduler.FPS,
		realtime: p.cfg.Scheduler.Realtime,
		canvas:   render.NewCanvas(req.Style.Aspect),
		fonts:    p.fonts,
		style:    req.Style,
		title:    req.Title,
		creator:  req.Creator,
	}

	if dir := filepath.Dir(req.Output); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return nil, classify(KindEncoding, "creating output directory", err)
		}
	}

	// Encoding: the encoder must be running before the first frame so the
	// captured stream has no leading gap.
	sink, err := p.start(ctx, sched.encodeOptions(req.AudioPath, req.Output, encoderSettings{
		videoCodec: p.cfg.Encoder.VideoCodec,
		audioCodec: p.cfg.Encoder.AudioCodec,
		pixFmt:     p.cfg.Encoder.PixFmt,
		preset:     p.cfg.FFmpeg.Preset,
		crf:        p.cfg.FFmpeg.CRF,
	}))
	if err != nil {
		return nil, classify(KindEncoding, "starting encoder", err)
	}

	p.setState(StateEncoding)
	prog.report(loadPhaseEnd)

	frames, err := sched.run(ctx, bundle, analyzer, req.Timeline, sink, func(elapsed, duration float64) {
		prog.report(loadPhaseEnd + encodeSpan*(elapsed/duration))
	})
	if err != nil {
		// teardown order: the loop has stopped; abort the encoder
		// without finalizing, then release the audio and any partial
		// output.
		sink.Abort()
		bundle.Audio.Seek(0)
		util.CleanupFiles(req.Output)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return nil, classify(KindEncoding, "encoding frames", err)
	}

	// Finalizing: let the last captured frames settle before signaling
	// encoder stop, then wait for the container flush.
	p.setState(StateFinalizing)
	if p.cfg.Scheduler.Realtime {
		select {
		case <-time.After(p.cfg.Scheduler.FinalizeGrace()):
		case <-ctx.Done():
			sink.Abort()
			util.CleanupFiles(req.Output)
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
	}
	if err := sink.Close(); err != nil {
		util.CleanupFiles(req.Output)
		return nil, classify(KindEncoding, "finalizing output", err)
	}

	prog.finish()

	return &Result{
		OutputPath: req.Output,
		Duration:   time.Duration(bundle.Audio.Duration() * float64(time.Second)),
		Frames:     frames,
	}, nil
}
