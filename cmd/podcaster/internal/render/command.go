package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Nephrolytics-ai/polyglot-podcast/cmd/podcaster/internal"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/script"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/tts/elevenlabs"
)

type options struct {
	output     string
	voices     []string
	voiceNames []string
	show       string
	intro      string
	outro      string
	scriptID   uint
	quiet      bool
}

func NewRenderCommand(globals *internal.Globals) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "render [script-file]",
		Short: "Render a script into one audio track",
		Long: `Render reads a "Speaker: text" script (a file, or "-" for stdin) and writes the
stitched episode. Use --script-id to render a script stored by "draft" instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.LoadConfig()
			if err != nil {
				return err
			}
			if opts.scriptID != 0 {
				return renderStored(cmd, cfg, opts)
			}
			if len(args) != 1 {
				return errors.New("a script file or --script-id is required")
			}
			return renderFile(cmd, cfg, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default podcast.<ext> in the current directory)")
	cmd.Flags().StringArrayVar(&opts.voices, "voice", nil, "speaker voice id, as Name=voice_id (repeatable)")
	cmd.Flags().StringArrayVar(&opts.voiceNames, "voice-name", nil, "speaker voice by display name, as Name=VoiceName (repeatable, ElevenLabs)")
	cmd.Flags().StringVar(&opts.show, "show", "", "take host voices from this show in the shows file")
	cmd.Flags().StringVar(&opts.intro, "intro", "", "intro audio file (overrides PODCAST_INTRO_PATH)")
	cmd.Flags().StringVar(&opts.outro, "outro", "", "outro audio file (overrides PODCAST_OUTRO_PATH)")
	cmd.Flags().UintVar(&opts.scriptID, "script-id", 0, "render a stored script and save the audio with it")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}

func renderFile(cmd *cobra.Command, cfg *config.Config, opts *options, path string) error {
	ctx := cmd.Context()

	text, err := readScript(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	voices, err := resolveVoices(ctx, cfg, opts)
	if err != nil {
		return err
	}

	synth, err := internal.Synthesizer(cfg)
	if err != nil {
		return err
	}
	pipelineOptions, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	introPath, outroPath := cfg.Audio.IntroPath, cfg.Audio.OutroPath
	if opts.intro != "" {
		introPath = opts.intro
	}
	if opts.outro != "" {
		outroPath = opts.outro
	}
	intro, err := studio.LoadClip(introPath)
	if err != nil {
		return err
	}
	outro, err := studio.LoadClip(outroPath)
	if err != nil {
		return err
	}

	bar := newProgressBar(cmd.ErrOrStderr(), len(script.Collect(text)), opts.quiet)
	p, err := pipeline.New(synth, append(pipelineOptions, pipeline.WithObserver(bar.observe))...)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, pipeline.Request{Script: text, Voices: voices, Intro: intro, Outro: outro})
	bar.finish()
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), result.Warnings)

	if result.Track == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No audio produced: %s\n", result.Reason)
		return nil
	}
	defer func() { _ = result.Track.Remove() }()

	data, err := result.Track.ReadAll()
	if err != nil {
		return err
	}
	target := opts.output
	if target == "" {
		target = "podcast." + result.Track.Format.Extension()
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d of %d lines)\n", target, result.Track.Duration.Round(time.Millisecond), result.Synthesized, result.Utterances)
	return nil
}

func renderStored(cmd *cobra.Command, cfg *config.Config, opts *options) error {
	ctx := cmd.Context()
	s, closeStudio, err := internal.BuildStudio(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer closeStudio()

	overrides, err := resolveVoices(ctx, cfg, opts)
	if err != nil {
		return err
	}
	stored, err := s.Store().GetScript(ctx, opts.scriptID)
	if err != nil {
		return err
	}

	bar := newProgressBar(cmd.ErrOrStderr(), len(script.Collect(stored.Content)), opts.quiet)
	result, err := s.RenderScript(ctx, opts.scriptID, overrides, bar.observe)
	bar.finish()
	if result != nil {
		printWarnings(cmd.ErrOrStderr(), result.Warnings)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored audio on script %d (run %s)\n", opts.scriptID, result.RunID)
	if opts.output == "" {
		return nil
	}
	saved, err := s.Store().GetScript(ctx, opts.scriptID)
	if err != nil {
		return err
	}
	return os.WriteFile(opts.output, saved.Audio, 0o644)
}

func readScript(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	return string(data), err
}

// resolveVoices merges the show's hosts, then --voice-name, then --voice.
func resolveVoices(ctx context.Context, cfg *config.Config, opts *options) (model.VoiceMap, error) {
	voices := model.VoiceMap{}

	if opts.show != "" {
		if cfg.ShowsFile == "" {
			return nil, errors.New("--show needs PODCAST_SHOWS_FILE")
		}
		shows, err := config.LoadShows(cfg.ShowsFile)
		if err != nil {
			return nil, err
		}
		show, err := config.FindShow(shows, opts.show)
		if err != nil {
			return nil, err
		}
		for speaker, voice := range show.VoiceMap() {
			voices[speaker] = voice
		}
	}

	if len(opts.voiceNames) > 0 {
		names, err := internal.ParseAssignments(opts.voiceNames)
		if err != nil {
			return nil, err
		}
		catalog, err := internal.VoiceCatalog(cfg)
		if err != nil {
			return nil, err
		}
		if catalog == nil {
			return nil, errors.New("--voice-name needs ELEVEN_LABS_API_KEY")
		}
		available, err := catalog.ListVoices(ctx)
		if err != nil {
			return nil, err
		}
		resolved := elevenlabs.VoiceMapFromNames(available, names)
		for speaker, voiceName := range names {
			id, ok := resolved[speaker]
			if !ok {
				return nil, fmt.Errorf("unknown voice %q for %s", voiceName, speaker)
			}
			voices[speaker] = id
		}
	}

	ids, err := internal.ParseAssignments(opts.voices)
	if err != nil {
		return nil, err
	}
	for speaker, id := range ids {
		voices[speaker] = id
	}
	return voices, nil
}

func printWarnings(w io.Writer, warnings []model.LineWarning) {
	for _, warning := range warnings {
		fmt.Fprintln(w, warning.String())
	}
}

type progress struct {
	bar *progressbar.ProgressBar
}

func newProgressBar(w io.Writer, total int, quiet bool) *progress {
	if quiet || total == 0 {
		return &progress{}
	}
	return &progress{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Synthesizing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (p *progress) observe(event pipeline.Event) {
	if p.bar == nil {
		return
	}
	if event.Utterance != nil {
		_ = p.bar.Set(event.Completed)
		return
	}
	if event.State != "" && event.State != model.RunStateSynthesizing {
		p.bar.Describe(string(event.State))
	}
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
