package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
)

// DecodeRate is the sample rate all audio is resampled to for analysis.
const DecodeRate = 44100

// DecodePCM runs ffmpeg to decode an audio file to mono float64 PCM in
// [-1, 1] at DecodeRate, suitable for spectrum analysis.
func (e *Executor) DecodePCM(ctx context.Context, path string) ([]float64, error) {
	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", DecodeRate),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}

	// ensure even byte count for int16 alignment
	if len(out)%2 != 0 {
		out = out[:len(out)-1]
	}

	samples := make([]float64, len(out)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(out[i*2 : i*2+2]))
		samples[i] = float64(s) / 32768.0
	}

	return samples, nil
}
