package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"gonum.org/v1/gonum/floats"
)

// Initial profile kinds accepted by -initial.
const (
	profileCosine = "cosine"
	profileWAV    = "wav"
)

// wavDecodeRate is the rate WAV seeds are resampled to before being stretched
// over the grid.
const wavDecodeRate = 48000

// initialProfile returns the u(x, 0) samples for an n point grid.
func initialProfile(kind, wavPath string, n int) ([]float64, error) {
	switch kind {
	case profileCosine, "":
		return cosineProfile(n), nil
	case profileWAV:
		if wavPath == "" {
			return nil, fmt.Errorf("%w: -initial wav needs -initial-wav", ErrInvalidParameters)
		}
		return wavProfile(wavPath, n)
	}
	return nil, fmt.Errorf("%w: unknown initial profile %q", ErrInvalidParameters, kind)
}

// cosineProfile samples cos(pi*x/(n-1)) at every interior index: half a
// period across the rod, +1 at the left wall and -1 at the right.
func cosineProfile(n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = 1
		return out
	}
	for i := range out {
		x := float64(i) / float64(n-1)
		out[i] = math.Cos(math.Pi * x)
	}
	return out
}

// wavProfile decodes a WAV file, averages its channels, stretches the
// waveform across n points and scales it to a peak magnitude of one.
func wavProfile(path string, n int) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stream, err := wav.DecodeWithSampleRate(wavDecodeRate, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	decoded, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading decoded %q: %w", path, err)
	}
	samples := decodeStereoI16(decoded)
	if len(samples) == 0 {
		return nil, fmt.Errorf("wav %q has no usable samples", path)
	}
	out := resampleLinear(samples, n)
	if peak := floats.Norm(out, math.Inf(1)); peak > 0 {
		floats.Scale(1/peak, out)
	}
	return out, nil
}

// decodeStereoI16 converts interleaved 16-bit stereo PCM into mono samples in
// [-1, 1).
func decodeStereoI16(pcm []byte) []float64 {
	frameCount := len(pcm) / 4
	samples := make([]float64, frameCount)
	for i := range samples {
		offset := i * 4
		left := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[offset+2 : offset+4]))
		samples[i] = (float64(left) + float64(right)) * (0.5 / 32768.0)
	}
	return samples
}

// resampleLinear maps src onto n evenly spaced points, first and last samples
// pinned to the ends.
func resampleLinear(src []float64, n int) []float64 {
	out := make([]float64, n)
	if len(src) == 1 || n == 1 {
		for i := range out {
			out[i] = src[0]
		}
		return out
	}
	scale := float64(len(src)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * scale
		lo := int(pos)
		if lo >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = src[lo]*(1-frac) + src[lo+1]*frac
	}
	return out
}
