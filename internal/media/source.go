package media

import (
	"sync/atomic"
)

// Source is a decoded audio stream with a known duration and a movable
// playback cursor. It is shared read-only between the frame scheduler
// (which advances the cursor) and the spectrum analyzer (which reads the
// window behind it).
type Source struct {
	pcm  []float64
	rate int
	pos  atomic.Int64 // cursor, in samples
}

// NewSource wraps mono PCM samples at the given sample rate.
func NewSource(pcm []float64, rate int) *Source {
	return &Source{pcm: pcm, rate: rate}
}

// Duration returns the stream length in seconds.
func (s *Source) Duration() float64 {
	if s.rate == 0 {
		return 0
	}
	return float64(len(s.pcm)) / float64(s.rate)
}

// SampleRate returns the PCM sample rate.
func (s *Source) SampleRate() int { return s.rate }

// Position returns the cursor position in seconds.
func (s *Source) Position() float64 {
	if s.rate == 0 {
		return 0
	}
	return float64(s.pos.Load()) / float64(s.rate)
}

// Seek moves the cursor to the given time. Negative values clamp to 0; the
// cursor may sit past the end, where reads produce silence.
func (s *Source) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	s.pos.Store(int64(seconds * float64(s.rate)))
}

// Ended reports whether the cursor has reached the end of the stream.
func (s *Source) Ended() bool {
	return s.pos.Load() >= int64(len(s.pcm))
}

// Window copies the size most recent samples ending at the cursor into dst
// (which must have length size), zero-padding where the stream has no data.
// It returns false if the window is entirely silent padding.
func (s *Source) Window(dst []float64) bool {
	end := s.pos.Load()
	start := end - int64(len(dst))

	any := false
	for i := range dst {
		idx := start + int64(i)
		if idx >= 0 && idx < int64(len(s.pcm)) {
			dst[i] = s.pcm[idx]
			any = true
		} else {
			dst[i] = 0
		}
	}
	return any
}
