package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/keagan/lyricsmith/internal/media"
)

// Frame is one spectrum snapshot: unsigned magnitudes, one byte per
// frequency bin. A fresh frame is produced per tick and never retained.
type Frame []byte

// Web Audio style dB range mapped onto the 0-255 byte scale.
const (
	minDecibels = -100.0
	maxDecibels = -30.0
)

// Options configures an Analyzer.
type Options struct {
	// WindowSize is the analysis window in samples; bins = WindowSize/2.
	WindowSize int
	// Smoothing interpolates consecutive samples toward the new value
	// (0 = no smoothing, values near 1 = heavy smoothing).
	Smoothing float64
}

// DefaultOptions returns the standard 256-sample window with 0.8 smoothing,
// producing 128 bins.
func DefaultOptions() Options {
	return Options{WindowSize: 256, Smoothing: 0.8}
}

// Analyzer turns the window of audio behind the source cursor into
// frequency-domain magnitude bytes. Bin count is fixed for the lifetime of
// one Analyzer.
type Analyzer struct {
	src       *media.Source
	fft       *fourier.FFT
	smoothing float64

	hamming  []float64
	buf      []float64
	coeffs   []complex128
	smoothed []float64
}

// New creates an analyzer over src.
func New(src *media.Source, opts Options) (*Analyzer, error) {
	if opts.WindowSize <= 0 {
		opts.WindowSize = 256
	}
	if opts.WindowSize%2 != 0 {
		return nil, fmt.Errorf("window size %d is not even", opts.WindowSize)
	}
	if opts.Smoothing < 0 || opts.Smoothing >= 1 {
		return nil, fmt.Errorf("smoothing %.2f out of range [0, 1)", opts.Smoothing)
	}

	n := opts.WindowSize
	hamming := make([]float64, n)
	for i := range hamming {
		hamming[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}

	return &Analyzer{
		src:       src,
		fft:       fourier.NewFFT(n),
		smoothing: opts.Smoothing,
		hamming:   hamming,
		buf:       make([]float64, n),
		coeffs:    make([]complex128, n/2+1),
		smoothed:  make([]float64, n/2),
	}, nil
}

// BinCount returns the number of magnitude bins per frame.
func (a *Analyzer) BinCount() int { return len(a.smoothed) }

// Sample produces the spectrum frame for the audio currently behind the
// source cursor. When no audio is flowing it returns a zero-filled frame
// rather than an error, so visualization degrades to a flat line.
func (a *Analyzer) Sample() Frame {
	frame := make(Frame, len(a.smoothed))

	if !a.src.Window(a.buf) {
		return frame
	}

	for i := range a.buf {
		a.buf[i] *= a.hamming[i]
	}
	a.fft.Coefficients(a.coeffs, a.buf)

	n := float64(len(a.buf))
	for k := range a.smoothed {
		mag := cmplxAbs(a.coeffs[k]) / n
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		frame[k] = magByte(a.smoothed[k])
	}

	return frame
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// magByte maps a linear magnitude onto 0-255 across the dB range.
func magByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	scaled := (db - minDecibels) / (maxDecibels - minDecibels) * 255
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return byte(scaled)
}
