package media

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// EncodeOptions configures one encode session.
type EncodeOptions struct {
	AudioPath  string // source audio, muxed unchanged into the output
	Output     string
	Width      int
	Height     int
	FPS        float64
	VideoCodec string
	AudioCodec string
	PixFmt     string
	Preset     string
	CRF        int
	Progress   ProgressFunc
}

// EncodeSession is a running ffmpeg encoder fed raw RGBA frames over stdin.
// Frames must be written in presentation order; Close finalizes the
// container, Abort kills the encoder and discards the output.
type EncodeSession struct {
	logger    zerolog.Logger
	stdin     io.WriteCloser
	cancel    context.CancelFunc
	done      chan error
	frameSize int
	output    string

	mu     sync.Mutex
	closed bool
}

// StartEncode launches the encoder. It must be running before the first
// frame is produced so video and audio start aligned at t=0.
func (e *Executor) StartEncode(ctx context.Context, opts EncodeOptions) (*EncodeSession, error) {
	if opts.AudioPath == "" {
		return nil, fmt.Errorf("audio path is required")
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid frame rate %.2f", opts.FPS)
	}

	args := []string{
		// video: raw RGBA frames on stdin
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%.2f", opts.FPS),
		"-i", "pipe:0",
		// audio: the original track
		"-i", opts.AudioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", opts.VideoCodec,
		"-preset", opts.Preset,
		"-crf", fmt.Sprintf("%d", opts.CRF),
		"-pix_fmt", opts.PixFmt,
		"-c:a", opts.AudioCodec,
		"-shortest",
		"-movflags", "+faststart",
		opts.Output,
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := e.command(ctx, args)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	sess := &EncodeSession{
		logger:    e.logger.With().Str("output", opts.Output).Logger(),
		stdin:     stdin,
		cancel:    cancel,
		done:      make(chan error, 1),
		frameSize: opts.Width * opts.Height * 4,
		output:    opts.Output,
	}

	go func() {
		e.streamOutput(stderr, opts.Progress, func(line string) {
			sess.logger.Debug().Str("ffmpeg", line).Msg("encoder output")
		})
		sess.done <- cmd.Wait()
	}()

	sess.logger.Info().
		Int("width", opts.Width).
		Int("height", opts.Height).
		Float64("fps", opts.FPS).
		Str("video_codec", opts.VideoCodec).
		Str("audio_codec", opts.AudioCodec).
		Msg("encoder started")

	return sess, nil
}

// WriteFrame hands one raw RGBA frame to the encoder.
func (s *EncodeSession) WriteFrame(pix []byte) error {
	if len(pix) != s.frameSize {
		return fmt.Errorf("frame is %d bytes, want %d", len(pix), s.frameSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("encoder session is closed")
	}

	if _, err := s.stdin.Write(pix); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Close signals end of input and waits for the encoder to flush and finalize
// the container.
func (s *EncodeSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.stdin.Close(); err != nil {
		s.cancel()
		<-s.done
		return fmt.Errorf("closing encoder input: %w", err)
	}

	if err := <-s.done; err != nil {
		return fmt.Errorf("encoder flush failed: %w", err)
	}

	s.logger.Info().Msg("encoder finalized")
	return nil
}

// Abort kills the encoder without finalizing. The output file is left
// behind for the caller to remove.
func (s *EncodeSession) Abort() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.stdin.Close()
	s.cancel()
	<-s.done

	s.logger.Info().Msg("encoder aborted")
}

// Output returns the output path the session writes to.
func (s *EncodeSession) Output() string { return s.output }
