package audio

import (
	"math"
)

// gainTolerance is the smallest gain change, in dB, that Normalize applies.
const gainTolerance = 0.01

// Gain scales every sample by db decibels.
func Gain(clip *Clip, db float64) *Clip {
	factor := float32(math.Pow(10, db/20))
	samples := make([]float32, len(clip.samples))
	for i, sample := range clip.samples {
		samples[i] = sample * factor
	}
	return &Clip{sampleRate: clip.sampleRate, channels: clip.channels, samples: samples}
}

// Normalize applies a uniform gain of target minus the clip's current loudness.
// Silent clips and clips already within gainTolerance of the target are returned as is.
func Normalize(clip *Clip, targetDBFS float64) *Clip {
	current := clip.DBFS()
	if math.IsInf(current, -1) {
		return clip
	}

	gain := targetDBFS - current
	if math.Abs(gain) < gainTolerance {
		return clip
	}
	return Gain(clip, gain)
}
