package main

import (
	"sync"

	"github.com/eapache/queue"
)

const audioSampleRate = 48000

// probeHistoryLimit bounds the probe values waiting to be played. Older values
// are dropped when the viewer outruns the audio device.
const probeHistoryLimit = 256

// probeAudioStream plays the field value at the probe point as stereo 16-bit
// PCM. Every iteration's probe value is queued; Read stretches the queued
// values across the requested frames by linear interpolation and holds the
// last one when nothing new has arrived. Values are AC coupled so the static
// cosine offset does not sit on the speaker.
type probeAudioStream struct {
	mu      sync.Mutex
	history *queue.Queue
	last    float64
	dc      float64
}

func newProbeAudioStream() *probeAudioStream {
	return &probeAudioStream{history: queue.New()}
}

// SetSample queues one probe value. The coupled level is clamped to [-1, 1].
func (s *probeAudioStream) SetSample(v float64) {
	v = clampUnit(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	const alpha = 0.001
	s.dc += alpha * (v - s.dc)
	for s.history.Length() >= probeHistoryLimit {
		s.history.Remove()
	}
	s.history.Add(clampUnit(v - s.dc))
}

// pending drains the queued values, starting from the last one played so the
// waveform joins the previous buffer without a step.
func (s *probeAudioStream) pending() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, 1, s.history.Length()+1)
	out[0] = s.last
	for s.history.Length() > 0 {
		out = append(out, s.history.Remove().(float64))
	}
	s.last = out[len(out)-1]
	return out
}

func (s *probeAudioStream) Read(p []byte) (int, error) {
	// Whole stereo frames only, 4 bytes each.
	frameBytes := len(p) - len(p)%4
	if frameBytes == 0 {
		return 0, nil
	}
	points := s.pending()
	frames := frameBytes / 4
	for f := 0; f < frames; f++ {
		sample := points[len(points)-1]
		if len(points) > 1 {
			pos := float64(f+1) / float64(frames) * float64(len(points)-1)
			lo := int(pos)
			if lo < len(points)-1 {
				frac := pos - float64(lo)
				sample = points[lo]*(1-frac) + points[lo+1]*frac
			}
		}
		v := int16(sample * 32767)
		i := f * 4
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
	}
	return frameBytes, nil
}

func (s *probeAudioStream) Close() error {
	return nil
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
