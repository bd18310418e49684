package audio

import (
	"math"
)

// Convert returns clip at the requested sample rate and channel count.
func Convert(clip *Clip, sampleRate int, channels int) *Clip {
	out := clip
	if out.channels != channels {
		out = remix(out, channels)
	}
	if out.sampleRate != sampleRate {
		out = resample(out, sampleRate)
	}
	return out
}

// remix copies mono into every output channel and averages down to mono.
func remix(clip *Clip, channels int) *Clip {
	frames := clip.Frames()
	samples := make([]float32, frames*channels)
	for frame := 0; frame < frames; frame++ {
		base := frame * clip.channels
		if clip.channels == 1 {
			for ch := 0; ch < channels; ch++ {
				samples[frame*channels+ch] = clip.samples[base]
			}
			continue
		}

		if channels == 1 {
			var sum float32
			for ch := 0; ch < clip.channels; ch++ {
				sum += clip.samples[base+ch]
			}
			samples[frame] = sum / float32(clip.channels)
			continue
		}

		for ch := 0; ch < channels; ch++ {
			samples[frame*channels+ch] = clip.samples[base+ch%clip.channels]
		}
	}
	return &Clip{sampleRate: clip.sampleRate, channels: channels, samples: samples}
}

// resample uses linear interpolation between neighbouring frames.
func resample(clip *Clip, sampleRate int) *Clip {
	srcFrames := clip.Frames()
	if srcFrames == 0 {
		return &Clip{sampleRate: sampleRate, channels: clip.channels}
	}

	dstFrames := int(math.Round(float64(srcFrames) * float64(sampleRate) / float64(clip.sampleRate)))
	ratio := float64(clip.sampleRate) / float64(sampleRate)
	samples := make([]float32, dstFrames*clip.channels)

	for frame := 0; frame < dstFrames; frame++ {
		position := float64(frame) * ratio
		left := int(position)
		if left >= srcFrames-1 {
			left = srcFrames - 1
		}
		right := left + 1
		if right >= srcFrames {
			right = srcFrames - 1
		}
		weight := float32(position - float64(left))

		for ch := 0; ch < clip.channels; ch++ {
			a := clip.samples[left*clip.channels+ch]
			b := clip.samples[right*clip.channels+ch]
			samples[frame*clip.channels+ch] = a + (b-a)*weight
		}
	}
	return &Clip{sampleRate: sampleRate, channels: clip.channels, samples: samples}
}
