package audio

import (
	"math"
)

func constantClip(sampleRate int, channels int, frames int, value float32) *Clip {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	clip, err := NewClip(sampleRate, channels, samples)
	if err != nil {
		panic(err)
	}
	return clip
}

func sineClip(sampleRate int, frames int, freq float64, amplitude float64) *Clip {
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	clip, err := NewClip(sampleRate, 1, samples)
	if err != nil {
		panic(err)
	}
	return clip
}
