package audio

// Stitch concatenates intro, clips and outro in that order. Nil and empty
// entries are ignored. Inputs are converted to the highest sample rate and channel count
// present. It returns nil when there is nothing to stitch.
func Stitch(clips []*Clip, intro *Clip, outro *Clip) *Clip {
	ordered := make([]*Clip, 0, len(clips)+2)
	keep := func(clip *Clip) {
		if clip != nil && !clip.Empty() {
			ordered = append(ordered, clip)
		}
	}
	keep(intro)
	for _, clip := range clips {
		keep(clip)
	}
	keep(outro)
	if len(ordered) == 0 {
		return nil
	}

	sampleRate, channels := 0, 0
	total := 0
	for _, clip := range ordered {
		sampleRate = max(sampleRate, clip.sampleRate)
		channels = max(channels, clip.channels)
	}

	converted := make([]*Clip, len(ordered))
	for i, clip := range ordered {
		converted[i] = Convert(clip, sampleRate, channels)
		total += len(converted[i].samples)
	}

	samples := make([]float32, 0, total)
	for _, clip := range converted {
		samples = append(samples, clip.samples...)
	}
	return &Clip{sampleRate: sampleRate, channels: channels, samples: samples}
}
