package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Clip is a decoded, interleaved PCM buffer with samples in [-1, 1].
// Clips are immutable: every transform returns a new clip.
type Clip struct {
	sampleRate int
	channels   int
	samples    []float32
}

// NewClip copies samples into a new clip.
func NewClip(sampleRate int, channels int, samples []float32) (*Clip, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if len(samples)%channels != 0 {
		return nil, errors.New("sample count is not a multiple of the channel count")
	}

	return &Clip{
		sampleRate: sampleRate,
		channels:   channels,
		samples:    append([]float32(nil), samples...),
	}, nil
}

// Silence returns a clip of d duration filled with zero samples.
func Silence(sampleRate int, channels int, d time.Duration) *Clip {
	frames := int(math.Round(d.Seconds() * float64(sampleRate)))
	if frames < 0 {
		frames = 0
	}
	return &Clip{
		sampleRate: sampleRate,
		channels:   channels,
		samples:    make([]float32, frames*channels),
	}
}

func (c *Clip) SampleRate() int {
	return c.sampleRate
}

func (c *Clip) Channels() int {
	return c.channels
}

func (c *Clip) Frames() int {
	if c.channels == 0 {
		return 0
	}
	return len(c.samples) / c.channels
}

func (c *Clip) Duration() time.Duration {
	if c.sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(c.Frames()) / float64(c.sampleRate) * float64(time.Second))
}

func (c *Clip) Empty() bool {
	return len(c.samples) == 0
}

// Samples returns a copy of the interleaved samples.
func (c *Clip) Samples() []float32 {
	return append([]float32(nil), c.samples...)
}

// DBFS is the RMS loudness of the clip relative to full scale.
// A silent or empty clip reports -Inf.
func (c *Clip) DBFS() float64 {
	if len(c.samples) == 0 {
		return math.Inf(-1)
	}

	var sum float64
	for _, sample := range c.samples {
		value := float64(sample)
		sum += value * value
	}
	rms := math.Sqrt(sum / float64(len(c.samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

// Peak is the largest absolute sample value.
func (c *Clip) Peak() float64 {
	var peak float64
	for _, sample := range c.samples {
		peak = math.Max(peak, math.Abs(float64(sample)))
	}
	return peak
}

func (c *Clip) SameFormat(other *Clip) bool {
	return other != nil && c.sampleRate == other.sampleRate && c.channels == other.channels
}
