package model

// SpeechOptions configures a speech synthesizer. Unset fields fall back to provider defaults
// and environment variables.
type SpeechOptions struct {
	URL       string
	AuthToken string
	Model     string
	// Stability and SimilarityBoost are ElevenLabs voice settings in [0,1].
	Stability       *float64
	SimilarityBoost *float64
	// OutputFormat is a provider specific format name, e.g. "mp3_44100_128".
	OutputFormat string
	// Instructions steer delivery for providers that accept a style prompt.
	Instructions string
}

func CloneSpeechOptions(opts SpeechOptions) SpeechOptions {
	cloned := opts
	if opts.Stability != nil {
		value := *opts.Stability
		cloned.Stability = &value
	}
	if opts.SimilarityBoost != nil {
		value := *opts.SimilarityBoost
		cloned.SimilarityBoost = &value
	}
	return cloned
}
